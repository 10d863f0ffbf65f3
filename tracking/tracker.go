package tracking

import (
	"time"

	"github.com/theoremus-urban-solutions/fleet-tracking/catalog"
	"github.com/theoremus-urban-solutions/fleet-tracking/geo"
)

// Tracker is the external surface of the tracking core: operator writes,
// reads, proximity queries and viewer sessions, over one injected
// store/publisher pair.
type Tracker struct {
	cat   *catalog.Catalog
	store *LocationStore
	pub   *UpdatePublisher

	// Resolver answers nearest-stop queries; replace it to swap in a
	// spatial index. Defaults to the linear haversine scan.
	Resolver geo.Resolver

	pollInterval time.Duration
}

// NewTracker builds the core over a catalog and operating region. eventBuffer
// and pollInterval take defaults when zero.
func NewTracker(cat *catalog.Catalog, bounds geo.Bounds, eventBuffer int, pollInterval time.Duration) *Tracker {
	pub := NewUpdatePublisher(eventBuffer)
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Tracker{
		cat:          cat,
		store:        NewLocationStore(cat, bounds, pub),
		pub:          pub,
		Resolver:     geo.LinearResolver{},
		pollInterval: pollInterval,
	}
}

// Catalog exposes the roster for collaborators that join positions with
// display names.
func (t *Tracker) Catalog() *catalog.Catalog { return t.cat }

// Publisher exposes the fan-out for collaborators that subscribe directly.
func (t *Tracker) Publisher() *UpdatePublisher { return t.pub }

// Write commits an operator position update stamped with the current wall
// clock.
func (t *Tracker) Write(id string, pos geo.Position) (geo.Position, error) {
	return t.store.Set(id, pos, time.Now())
}

// WriteAt commits a position update carrying its own observation time, for
// writers (feed ingest) that know when the position was actually sampled.
func (t *Tracker) WriteAt(id string, pos geo.Position, at time.Time) (geo.Position, error) {
	return t.store.Set(id, pos, at)
}

// Read returns the current position for id, false if never positioned.
func (t *Tracker) Read(id string) (geo.Position, bool) {
	pos, _, ok := t.store.Get(id)
	return pos, ok
}

// ReadRecord returns the full record for id.
func (t *Tracker) ReadRecord(id string) (PositionRecord, bool) {
	return t.store.Record(id)
}

// SetStatus updates a vehicle's service status.
func (t *Tracker) SetStatus(id string, st catalog.Status) error {
	return t.store.SetStatus(id, st)
}

// Snapshot returns the current positioned-asset table.
func (t *Tracker) Snapshot() map[string]PositionRecord {
	return t.store.Snapshot()
}

// Nearest resolves the positioned asset of the given kind closest to pos and
// the distance to it in kilometers. Candidates come from the store snapshot
// filtered to kind and are visited in roster order, which makes the
// equal-distance tie-break deterministic. The query point itself is not
// bounds-checked. The third return is false when no asset of that kind has a
// position.
func (t *Tracker) Nearest(pos geo.Position, kind catalog.Kind) (catalog.Asset, float64, bool) {
	snap := t.store.Snapshot()
	assets := t.cat.OfKind(kind)
	cands := make([]geo.Candidate, 0, len(assets))
	for _, a := range assets {
		rec, ok := snap[a.ID]
		if !ok {
			continue
		}
		cands = append(cands, geo.Candidate{ID: a.ID, Position: rec.Position})
	}
	m, ok := t.Resolver.Nearest(pos, cands)
	if !ok {
		return catalog.Asset{}, 0, false
	}
	a, _ := t.cat.Get(m.ID)
	return a, m.DistanceKM, true
}

// NearestStop is the common proximity query: the stop closest to pos.
func (t *Tracker) NearestStop(pos geo.Position) (catalog.Asset, float64, bool) {
	return t.Nearest(pos, catalog.KindStop)
}

// OpenSession starts a sync loop for one viewer session. interval <= 0 uses
// the tracker's configured poll interval. The caller owns the returned loop
// and must Stop it when the session ends.
func (t *Tracker) OpenSession(r Renderer, interval time.Duration) *SyncLoop {
	if interval <= 0 {
		interval = t.pollInterval
	}
	loop := NewSyncLoop(func() (map[string]PositionRecord, error) {
		return t.store.Snapshot(), nil
	}, t.pub, r)
	loop.Start(interval)
	return loop
}
