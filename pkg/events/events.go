package events

import (
	"sync"
	"time"

	"github.com/fcrepo-go/lsup/pkg/rdf"
)

// EventType identifies the kind of change a changelog entry records.
type EventType string

const (
	EventResourceCreated     EventType = "resource.created"
	EventResourceUpdated     EventType = "resource.updated"
	EventResourceDeleted     EventType = "resource.deleted"    // bury
	EventResourceForgotten   EventType = "resource.forgotten"  // hard delete
	EventResourceResurrected EventType = "resource.resurrected"
	EventVersionCreated      EventType = "resource.version.created"
	EventVersionReverted     EventType = "resource.version.reverted"
)

// Event is one entry in a transaction's changelog: the delta a single
// resource operation produced, plus enough metadata for a downstream
// subscriber to act on it without re-reading the store (§4.8).
type Event struct {
	ID            string
	Type          EventType
	Timestamp     time.Time
	UID           string
	ResourceTypes []string
	Actor         string
	RemoveSet     []rdf.Quad
	AddSet        []rdf.Quad
}

// Changelog accumulates events for the lifetime of a single
// transaction, in the order they were appended. It is drained exactly
// once, after the transaction's Commit returns successfully; nothing
// in this package persists a changelog across a process restart, so a
// crash between commit and drain loses those events; the messaging
// collaborator draining it is responsible for its own retry and
// delivery guarantees.
type Changelog struct {
	mu    sync.Mutex
	queue []Event
}

// NewChangelog returns an empty changelog.
func NewChangelog() *Changelog {
	return &Changelog{}
}

// Append adds an event to the end of the changelog, timestamping it
// with the current time if it has none.
func (c *Changelog) Append(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, e)
}

// Len reports how many events are currently queued.
func (c *Changelog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Drain returns every queued event in FIFO order and empties the
// changelog. Calling Drain on an empty changelog returns nil.
func (c *Changelog) Drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil
	}
	out := c.queue
	c.queue = nil
	return out
}

// Subscriber is a channel that receives drained events.
type Subscriber chan *Event

// Broker distributes drained changelog events to subscribers. It is
// the hand-off point between the repository core, which only
// guarantees ordering within a transaction, and whatever external
// collaborator turns events into SPARQL-Update notifications, a
// message queue payload, or similar.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop.
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker.
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish queues an event for distribution to every current
// subscriber.
func (b *Broker) Publish(event *Event) {
	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

// PublishAll publishes every event returned by a Changelog.Drain call,
// preserving their order.
func (b *Broker) PublishAll(events []Event) {
	for i := range events {
		b.Publish(&events[i])
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
