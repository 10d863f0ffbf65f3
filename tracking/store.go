package tracking

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/fleet-tracking/catalog"
	"github.com/theoremus-urban-solutions/fleet-tracking/geo"
)

var (
	// ErrUnknownAsset rejects writes targeting an id that is not in the
	// catalog. Assets are never created implicitly by a write.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrOutOfBounds rejects coordinates outside the operating region. The
	// previously stored position is retained.
	ErrOutOfBounds = errors.New("position outside operating region")
)

// PositionRecord is the stored state for one positioned asset. Records are
// copied out whole; callers never observe a half-written pair.
type PositionRecord struct {
	Position  geo.Position   `json:"position"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Status    catalog.Status `json:"status,omitempty"`
}

type entry struct {
	mu        sync.RWMutex
	hasPos    bool
	pos       geo.Position
	updatedAt time.Time
	status    catalog.Status
}

// LocationStore holds the authoritative assetId -> position mapping. The
// entry set is fixed at construction from the catalog; only position, time
// and status mutate afterwards. Each asset has its own lock, so writers to
// different assets never contend.
type LocationStore struct {
	bounds  geo.Bounds
	pub     *UpdatePublisher
	entries map[string]*entry // keys fixed after construction
}

// NewLocationStore builds a store over the catalog roster. Stops that carry
// a static coordinate are seeded so proximity queries work before any write
// arrives. Published change events go to pub.
func NewLocationStore(cat *catalog.Catalog, bounds geo.Bounds, pub *UpdatePublisher) *LocationStore {
	s := &LocationStore{
		bounds:  bounds,
		pub:     pub,
		entries: make(map[string]*entry, cat.Len()),
	}
	seededAt := time.Now()
	for _, a := range cat.All() {
		e := &entry{status: a.Status}
		if a.Position != nil {
			e.hasPos = true
			e.pos = *a.Position
			e.updatedAt = seededAt
		}
		s.entries[a.ID] = e
	}
	return s
}

// Get returns the current position and its timestamp. The third return is
// false when the asset is unknown or has never been positioned.
func (s *LocationStore) Get(id string) (geo.Position, time.Time, bool) {
	e, ok := s.entries[id]
	if !ok {
		return geo.Position{}, time.Time{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.hasPos {
		return geo.Position{}, time.Time{}, false
	}
	return e.pos, e.updatedAt, true
}

// Record returns the full stored record for id.
func (s *LocationStore) Record(id string) (PositionRecord, bool) {
	e, ok := s.entries[id]
	if !ok {
		return PositionRecord{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.hasPos {
		return PositionRecord{}, false
	}
	return PositionRecord{Position: e.pos, UpdatedAt: e.updatedAt, Status: e.status}, true
}

// Set validates and commits a position write. An unknown id fails with
// ErrUnknownAsset; an out-of-region position fails with ErrOutOfBounds and
// leaves the stored value untouched. A write whose time is older than the
// stored one is suppressed: no mutation, no event, and the authoritative
// stored position is returned so the caller can detect it was ignored. Ties
// resolve in favor of the new write.
//
// The change event is published before the entry lock is released, so for a
// single asset the event order seen by any subscriber matches commit order,
// and a Get after the event necessarily reflects it.
func (s *LocationStore) Set(id string, pos geo.Position, now time.Time) (geo.Position, error) {
	e, ok := s.entries[id]
	if !ok {
		return geo.Position{}, fmt.Errorf("%w: %q", ErrUnknownAsset, id)
	}
	if !s.bounds.Contains(pos) {
		return geo.Position{}, fmt.Errorf("%w: lat=%.5f lon=%.5f", ErrOutOfBounds, pos.Latitude, pos.Longitude)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasPos && now.Before(e.updatedAt) {
		return e.pos, nil // stale write suppressed
	}
	e.hasPos = true
	e.pos = pos
	e.updatedAt = now
	if s.pub != nil {
		s.pub.Publish(id, PositionRecord{Position: pos, UpdatedAt: now, Status: e.status})
	}
	return pos, nil
}

// SetStatus updates a vehicle's service status on the same writer path as
// positions. Location logic ignores status entirely; if the asset is
// positioned the change is published so viewers converge without waiting
// for the next poll.
func (s *LocationStore) SetStatus(id string, st catalog.Status) error {
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAsset, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = st
	if e.hasPos && s.pub != nil {
		s.pub.Publish(id, PositionRecord{Position: e.pos, UpdatedAt: e.updatedAt, Status: st})
	}
	return nil
}

// Status returns the current status for id.
func (s *LocationStore) Status(id string) (catalog.Status, bool) {
	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status, true
}

// Snapshot returns a copy of every positioned asset. Each record is read
// under its entry lock, so no record is ever a torn pair.
func (s *LocationStore) Snapshot() map[string]PositionRecord {
	out := make(map[string]PositionRecord, len(s.entries))
	for id, e := range s.entries {
		e.mu.RLock()
		if e.hasPos {
			out[id] = PositionRecord{Position: e.pos, UpdatedAt: e.updatedAt, Status: e.status}
		}
		e.mu.RUnlock()
	}
	return out
}
