package tracking

import (
	"log"
	"sync"
)

// TopicAll subscribes to change events for every asset.
const TopicAll = "*"

const defaultEventBuffer = 64

// Event is one committed change, fanned out to subscribers.
type Event struct {
	AssetID string
	Record  PositionRecord
}

// EventFunc receives delivered events. It runs on the subscription's own
// goroutine; a panic is recovered and logged, and a slow callback delays
// only its own subscription, never the writer or other subscribers.
type EventFunc func(Event)

// Subscription is the handle returned by Subscribe. Events queue into a
// bounded channel drained by a dedicated goroutine, which preserves
// per-subscriber delivery order for each asset while keeping Publish
// non-blocking. When the queue is full the event is dropped; the sync loop's
// periodic poll heals any gap.
type Subscription struct {
	topic   string
	events  chan Event
	done    chan struct{}
	closeMu sync.Once
}

func (sub *Subscription) drain(fn EventFunc) {
	for {
		select {
		case <-sub.done:
			return
		case ev := <-sub.events:
			select {
			case <-sub.done:
				return
			default:
			}
			invoke(fn, ev)
		}
	}
}

func invoke(fn EventFunc, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tracking: subscriber panic on %s: %v", ev.AssetID, r)
		}
	}()
	fn(ev)
}

// UpdatePublisher fans committed changes out to however many subscribers are
// currently registered. Delivery is best effort: no acknowledgment, no
// retry, no persistence of missed events.
type UpdatePublisher struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
}

// NewUpdatePublisher builds a publisher whose subscriptions each buffer up
// to buffer undelivered events (a default applies when buffer <= 0).
func NewUpdatePublisher(buffer int) *UpdatePublisher {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &UpdatePublisher{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

// Subscribe registers fn for events on topic, either a specific asset id or
// TopicAll. Duplicate subscriptions each receive duplicate events.
func (p *UpdatePublisher) Subscribe(topic string, fn EventFunc) *Subscription {
	sub := &Subscription{
		topic:  topic,
		events: make(chan Event, p.buffer),
		done:   make(chan struct{}),
	}
	go sub.drain(fn)
	p.mu.Lock()
	p.subs[sub] = struct{}{}
	p.mu.Unlock()
	return sub
}

// Unsubscribe removes the registration. Safe to call more than once and
// with nil. Once it returns, the subscription's callback is never invoked
// for an event it has not already started processing.
func (p *UpdatePublisher) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	p.mu.Lock()
	delete(p.subs, sub)
	p.mu.Unlock()
	sub.closeMu.Do(func() { close(sub.done) })
}

// Publish enqueues the event to every subscription matching assetID. The
// subscriber set is copied under a read lock before sending, so subscribing
// or unsubscribing mid-publish is well defined: the publish may or may not
// include that subscriber, and never affects the rest.
func (p *UpdatePublisher) Publish(assetID string, rec PositionRecord) {
	p.mu.RLock()
	targets := make([]*Subscription, 0, len(p.subs))
	for sub := range p.subs {
		if sub.topic == TopicAll || sub.topic == assetID {
			targets = append(targets, sub)
		}
	}
	p.mu.RUnlock()

	ev := Event{AssetID: assetID, Record: rec}
	for _, sub := range targets {
		select {
		case sub.events <- ev:
		default:
			log.Printf("tracking: subscriber queue full, dropping event for %s", assetID)
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (p *UpdatePublisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
