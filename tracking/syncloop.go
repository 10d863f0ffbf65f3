package tracking

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultPollInterval bounds viewer staleness when no interval is configured.
const DefaultPollInterval = 20 * time.Second

// Renderer consumes state for one viewer session. Both methods must be
// quick and must tolerate receiving the same record twice: the event path
// and the poll path overlap on purpose.
type Renderer interface {
	// RenderSnapshot receives the full positioned-asset table on every poll.
	RenderSnapshot(map[string]PositionRecord)
	// RenderUpdate receives a single changed asset as soon as its event
	// arrives.
	RenderUpdate(assetID string, rec PositionRecord)
}

// SnapshotFunc supplies the poll path. A non-nil error skips the tick; the
// loop retries at the next interval indefinitely.
type SnapshotFunc func() (map[string]PositionRecord, error)

// SyncLoop reconciles one viewer session with the location store. It
// subscribes to the wildcard topic for immediate updates and independently
// polls a full snapshot on a fixed interval, so the session converges even
// if every published event is lost.
type SyncLoop struct {
	snapshot SnapshotFunc
	pub      *UpdatePublisher
	renderer Renderer

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	sub     *Subscription
}

// NewSyncLoop wires a loop to its snapshot source, publisher and renderer.
// The loop starts in the Stopped state.
func NewSyncLoop(snapshot SnapshotFunc, pub *UpdatePublisher, r Renderer) *SyncLoop {
	return &SyncLoop{snapshot: snapshot, pub: pub, renderer: r}
}

// Start transitions Stopped -> Running: subscribes to all asset changes and
// begins the poll timer, with an immediate first poll. Calling Start while
// already Running is a no-op.
func (l *SyncLoop) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.running = true
	l.sub = l.pub.Subscribe(TopicAll, func(ev Event) {
		l.deliverUpdate(ev)
	})
	go l.run(ctx, interval)
}

// Stop transitions Running -> Stopped: cancels the timer and unsubscribes.
// Once Stop returns no further renderer invocation can happen for this
// session; a delivery racing Stop is dropped, never delivered late. Calling
// Stop while already Stopped is a no-op.
func (l *SyncLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.cancel()
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()
	l.pub.Unsubscribe(sub)
}

// Running reports the loop state.
func (l *SyncLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *SyncLoop) run(ctx context.Context, interval time.Duration) {
	// immediate first poll, then fixed cadence
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.poll()
			t.Reset(interval)
		}
	}
}

func (l *SyncLoop) poll() {
	snap, err := l.snapshot()
	if err != nil {
		// transient storage failure: keep the last rendered state and retry
		// next tick
		log.Printf("tracking: snapshot unavailable, skipping tick: %v", err)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	safeRender(func() { l.renderer.RenderSnapshot(snap) })
}

func (l *SyncLoop) deliverUpdate(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	safeRender(func() { l.renderer.RenderUpdate(ev.AssetID, ev.Record) })
}

// safeRender contains renderer failures: one bad consumer cannot wedge the
// timer or the subscription.
func safeRender(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tracking: renderer panic: %v", r)
		}
	}()
	fn()
}
