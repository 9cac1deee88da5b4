package rebound

import "github.com/rebound-engine/rebound/dynamics"

// EventType discriminates collision lifecycle events.
type EventType uint8

const (
	// CollisionEnter fires on the step two shapes first touch.
	CollisionEnter EventType = iota
	// CollisionStay fires on every further step of continued contact.
	CollisionStay
	// CollisionExit fires on the step a previously touching pair separates.
	CollisionExit
)

// Event is one collision lifecycle notification. A and B are the involved
// shapes in pair-iteration order.
type Event struct {
	Type EventType
	A, B *dynamics.Shape
}

// EventListener is a callback for collision events. Listeners run on the
// simulation goroutine during PostUpdate and must not mutate the registry.
type EventListener func(Event)

// events buffers collision notifications raised during detection/response
// and dispatches them at the post-update phase, so listeners observe a
// fully integrated step.
type events struct {
	listeners map[EventType][]EventListener
	buffer    []Event
}

func newEvents() events {
	return events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 64),
	}
}

func (e *events) subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *events) queue(eventType EventType, a, b *dynamics.Shape) {
	// Skip buffering when nobody is listening for this type.
	if len(e.listeners[eventType]) == 0 {
		return
	}
	e.buffer = append(e.buffer, Event{Type: eventType, A: a, B: b})
}

func (e *events) flush() {
	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
