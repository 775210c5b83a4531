package engine

import (
	"image/color"
	"sync"

	"VRBoard/internal/command"
	"VRBoard/internal/geom"
)

// EventKind identifies an input event.
type EventKind int

const (
	EventDrawStart EventKind = iota
	EventDrawUpdate
	EventDrawEnd
	EventSelectToggle
	EventSelectCommit
	EventVoiceTranscript
	EventMenuAction
	EventPointerRay
	EventGazeRay
	EventTipColor
	EventActivateWorkflow
	EventMoveSurface
	eventCall
)

var eventNames = map[EventKind]string{
	EventDrawStart:        "draw_start",
	EventDrawUpdate:       "draw_update",
	EventDrawEnd:          "draw_end",
	EventSelectToggle:     "select_toggle",
	EventSelectCommit:     "select_commit",
	EventVoiceTranscript:  "voice",
	EventMenuAction:       "menu",
	EventPointerRay:       "pointer_ray",
	EventGazeRay:          "gaze_ray",
	EventTipColor:         "tip_color",
	EventActivateWorkflow: "activate",
	EventMoveSurface:      "move_surface",
	eventCall:             "call",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseEventKind maps a wire name to its kind. Internal kinds are not parseable.
func ParseEventKind(name string) (EventKind, bool) {
	for k, n := range eventNames {
		if n == name && k != eventCall {
			return k, true
		}
	}
	return 0, false
}

// Event is one input from a device. Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	Pos       geom.Vec3
	Ray       geom.Ray
	Text      string
	Color     color.NRGBA
	Workflow  command.Kind
	SurfaceID string

	fn   func()
	done chan struct{}
}

func DrawStart() Event { return Event{Kind: EventDrawStart} }
func DrawUpdate(pos geom.Vec3) Event { return Event{Kind: EventDrawUpdate, Pos: pos} }
func DrawEnd() Event { return Event{Kind: EventDrawEnd} }
func SelectToggle() Event { return Event{Kind: EventSelectToggle} }
func SelectCommit() Event { return Event{Kind: EventSelectCommit} }
func VoiceTranscript(text string) Event { return Event{Kind: EventVoiceTranscript, Text: text} }
func MenuAction(name string) Event { return Event{Kind: EventMenuAction, Text: name} }
func PointerRay(r geom.Ray) Event { return Event{Kind: EventPointerRay, Ray: r} }
func GazeRay(r geom.Ray) Event { return Event{Kind: EventGazeRay, Ray: r} }
func TipColor(c color.NRGBA) Event { return Event{Kind: EventTipColor, Color: c} }

func ActivateWorkflow(kind command.Kind) Event {
	return Event{Kind: EventActivateWorkflow, Workflow: kind}
}

func MoveSurface(id string, origin geom.Vec3) Event {
	return Event{Kind: EventMoveSurface, SurfaceID: id, Pos: origin}
}

// Queue is a FIFO of events safe for many producers and one consumer.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain removes and returns every queued event in arrival order.
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
