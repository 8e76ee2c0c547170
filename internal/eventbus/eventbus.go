package eventbus

import (
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"assetgrip/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventItemsLoaded     = domain.EventItemsLoaded
	EventLoadFailed      = domain.EventLoadFailed
	EventSourceExhausted = domain.EventSourceExhausted
	EventItemsVisible    = domain.EventItemsVisible
	EventSearchChanged   = domain.EventSearchChanged
	EventListReset       = domain.EventListReset
	EventConfigLoaded    = domain.EventConfigLoaded
)

// Re-export event structs
type (
	ItemsLoadedEvent     = domain.ItemsLoadedEvent
	LoadFailedEvent      = domain.LoadFailedEvent
	SourceExhaustedEvent = domain.SourceExhaustedEvent
	ItemsVisibleEvent    = domain.ItemsVisibleEvent
	SearchChangedEvent   = domain.SearchChangedEvent
	ListResetEvent       = domain.ListResetEvent
	ConfigLoadedEvent    = domain.ConfigLoadedEvent
	VisibleAsset         = domain.VisibleAsset
)

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	handlerWg sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
	log       logrus.FieldLogger
}

// New creates a new event bus
func New(log logrus.FieldLogger) EventBus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
		log:       log.WithField("component", "eventbus"),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) {
	// Visibility batches arrive on every scroll, keep them out of the log
	if event.Type() != EventItemsVisible {
		b.log.WithField("event", event.Type()).Debug("publishing event")
	}

	select {
	case <-b.quit:
		return
	default:
	}

	select {
	case b.eventChan <- event:
	default:
		b.log.WithField("event", event.Type()).Warn("event bus channel full, dropping event")
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher and waits for running handlers
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.wg.Wait()
		b.handlerWg.Wait()
	})
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.deliver(event)

		case <-b.quit:
			// Drain remaining events
			for {
				select {
				case event := <-b.eventChan:
					b.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (b *bus) deliver(event DomainEvent) {
	// Copy handlers so none run under the lock
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[event.Type()]))
	copy(subs, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, s := range subs {
		b.handlerWg.Add(1)
		go func(h EventHandler) {
			defer b.handlerWg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.WithField("event", event.Type()).
						Errorf("event handler panic: %v\nStack: %s", r, debug.Stack())
				}
			}()
			h(event)
		}(s.handler)
	}
}
