package feed

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/theoremus-urban-solutions/fleet-tracking/tracking"
)

// Ingestor polls a Source and writes each decoded position into the tracker.
// Stale feed entries are absorbed by the store's last-writer-wins policy;
// vehicles missing from the catalog and out-of-region positions are counted
// and logged, never fatal.
type Ingestor struct {
	source   Source
	tracker  *tracking.Tracker
	interval time.Duration
}

// NewIngestor wires a source to the tracker with the given poll interval.
func NewIngestor(source Source, tracker *tracking.Tracker, interval time.Duration) *Ingestor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Ingestor{source: source, tracker: tracker, interval: interval}
}

// Run polls until ctx is cancelled. The first fetch happens immediately.
func (in *Ingestor) Run(ctx context.Context) {
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			in.tick(ctx)
			t.Reset(in.interval)
		}
	}
}

func (in *Ingestor) tick(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, in.interval)
	defer cancel()
	positions, err := in.source.Fetch(cctx)
	if err != nil {
		log.Printf("feed: fetch failed: %v", err)
		return
	}
	applied, unknown, rejected := in.Apply(positions)
	log.Printf("feed: %d positions, %d applied, %d unknown, %d out of bounds", len(positions), applied, unknown, rejected)
}

// Apply writes a batch of positions through the tracker and reports how many
// were applied, targeted unknown vehicles, or fell outside the region.
func (in *Ingestor) Apply(positions []VehiclePosition) (applied, unknown, rejected int) {
	for _, vp := range positions {
		_, err := in.tracker.WriteAt(vp.VehicleID, vp.Position, vp.RecordedAt)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, tracking.ErrUnknownAsset):
			unknown++
		case errors.Is(err, tracking.ErrOutOfBounds):
			rejected++
		default:
			log.Printf("feed: write %s: %v", vp.VehicleID, err)
		}
	}
	return applied, unknown, rejected
}
