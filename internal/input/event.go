// Package input carries host events into the frame loop. Hosts push from
// any goroutine; the frame drains at the start of each tick.
package input

import (
	"strings"
	"sync"
)

type PointerAction int

const (
	PointerDown PointerAction = iota
	PointerMove
	PointerUp
)

func (a PointerAction) String() string {
	switch a {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	default:
		return "unknown"
	}
}

// Event is either a pointer event (X, Y in normalised device coordinates)
// or a key transition.
type Event struct {
	Pointer bool
	Action  PointerAction
	X, Y    float64

	Key  string
	Down bool
}

func Pointer(action PointerAction, x, y float64) Event {
	return Event{Pointer: true, Action: action, X: x, Y: y}
}

// Key builds a key event. Names are lower-cased.
func Key(name string, down bool) Event {
	return Event{Key: NormalizeKey(name), Down: down}
}

// NormalizeKey maps a host key name onto the lower-case names used by
// bindings.
func NormalizeKey(name string) string {
	if name == " " {
		return "space"
	}
	k := strings.ToLower(strings.TrimSpace(name))
	switch k {
	case "arrowup":
		return "up"
	case "arrowdown":
		return "down"
	case "arrowleft":
		return "left"
	case "arrowright":
		return "right"
	case "esc":
		return "escape"
	}
	return k
}

type Queue struct {
	mu     sync.Mutex
	events []Event
}

func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain returns the queued events in arrival order and empties the queue.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
