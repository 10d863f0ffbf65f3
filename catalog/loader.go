package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Catalog is the indexed roster. Built once, read-only afterwards, safe for
// concurrent use.
type Catalog struct {
	byID  map[string]Asset
	order []string // roster order, kept for deterministic iteration
}

type rosterFile struct {
	Assets []Asset `yaml:"assets" validate:"required,min=1,dive"`
}

// Load reads and validates a YAML roster file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a Catalog from raw YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	v := validator.New()
	if err := v.Struct(rf); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return New(rf.Assets)
}

// New indexes a roster. Duplicate ids are rejected.
func New(assets []Asset) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Asset, len(assets))}
	for _, a := range assets {
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate asset id %q", a.ID)
		}
		c.byID[a.ID] = a
		c.order = append(c.order, a.ID)
	}
	return c, nil
}

// Get returns the asset for id.
func (c *Catalog) Get(id string) (Asset, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Has reports whether id is in the roster.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the roster size.
func (c *Catalog) Len() int { return len(c.byID) }

// All returns every asset in roster order.
func (c *Catalog) All() []Asset {
	out := make([]Asset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// OfKind returns the assets of one kind in roster order.
func (c *Catalog) OfKind(k Kind) []Asset {
	out := make([]Asset, 0, len(c.order))
	for _, id := range c.order {
		if a := c.byID[id]; a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}

// IDs returns all asset ids sorted, mainly for logging and health output.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
