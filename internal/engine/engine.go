// Package engine runs the sketching core on a single goroutine: it drains
// queued device events once per frame, feeds them to the pencil and the
// active workflow, and pushes changed strokes to the render sinks.
package engine

import (
	"context"
	"image/color"
	"log"
	"sync"
	"time"

	"VRBoard/internal/capture"
	"VRBoard/internal/command"
	"VRBoard/internal/geom"
	"VRBoard/internal/state"
)

// RenderSink receives stroke geometry in world space. Calls arrive on the
// tick goroutine and the point slices are owned by the sink.
type RenderSink interface {
	Render(id string, points []geom.Vec3, c color.NRGBA)
	Hide(id string)
}

// Config holds everything the engine builds its components from.
type Config struct {
	Capture         capture.Config
	Workflow        command.Config
	DefaultWorkflow command.Kind
}

type Engine struct {
	Registry *state.Registry
	Surfaces *state.SurfaceSet
	Pencil   *capture.Pencil

	workflows map[command.Kind]*command.Workflow
	active    *command.Workflow

	queue Queue

	sinksMu sync.Mutex
	sinks   []RenderSink
	shown   map[string]uint64

	tip                 geom.Vec3
	pointer, gaze       geom.Ray
	hasTip              bool
	hasPointer, hasGaze bool
}

// New builds an engine over surfaces and activates the default workflow.
func New(cfg Config, surfaces *state.SurfaceSet) *Engine {
	if surfaces == nil {
		surfaces = state.NewSurfaceSet(0)
	}
	reg := state.NewRegistry()
	e := &Engine{
		Registry: reg,
		Surfaces: surfaces,
		Pencil:   capture.NewPencil(cfg.Capture, reg, surfaces),
		workflows: map[command.Kind]*command.Workflow{
			command.KindRayMenu:   command.NewWorkflow(command.KindRayMenu, cfg.Workflow, reg),
			command.KindGazeVoice: command.NewWorkflow(command.KindGazeVoice, cfg.Workflow, reg),
		},
		shown: make(map[string]uint64),
	}
	e.Activate(cfg.DefaultWorkflow)
	return e
}

// Push queues an event for the next tick. Safe from any goroutine.
func (e *Engine) Push(ev Event) { e.queue.Push(ev) }

func (e *Engine) AddSink(s RenderSink) {
	e.sinksMu.Lock()
	e.sinks = append(e.sinks, s)
	e.sinksMu.Unlock()
}

// Workflow returns the workflow of the given kind.
func (e *Engine) Workflow(kind command.Kind) *command.Workflow { return e.workflows[kind] }

// Active returns the workflow currently receiving input.
func (e *Engine) Active() *command.Workflow { return e.active }

// Activate switches input to the workflow of kind. The previous one is
// deactivated so it leaves no highlight behind.
func (e *Engine) Activate(kind command.Kind) {
	next, ok := e.workflows[kind]
	if !ok {
		log.Printf("[ENGINE] Unknown workflow %d", kind)
		return
	}
	if next == e.active {
		return
	}
	if e.active != nil {
		e.active.Deactivate()
	}
	e.active = next
	next.Activate()
}

// SetMetrics installs m on every workflow.
func (e *Engine) SetMetrics(m command.MetricsSink) {
	for _, w := range e.workflows {
		w.Metrics = m
	}
}

// SetTask installs the current trial on every workflow; nil ends it.
func (e *Engine) SetTask(t command.Task) {
	for _, w := range e.workflows {
		w.SetTask(t)
	}
}

// Tick runs one frame at time now.
func (e *Engine) Tick(now time.Time) {
	for _, ev := range e.queue.Drain() {
		e.handle(ev)
	}

	if e.active != nil {
		switch {
		case e.active.Kind() == command.KindRayMenu && e.hasPointer:
			e.active.Update(e.pointer, now)
		case e.active.Kind() == command.KindGazeVoice && e.hasGaze:
			e.active.Update(e.gaze, now)
		}
	}

	e.flush()
}

func (e *Engine) handle(ev Event) {
	switch ev.Kind {
	case EventSelectCommit, EventSelectToggle, EventVoiceTranscript, EventMenuAction:
		if e.active == nil {
			log.Printf("[ENGINE] No active workflow for %s", ev.Kind)
			return
		}
	}

	switch ev.Kind {
	case EventDrawStart:
		e.Pencil.TriggerDown()
		e.sampleTip()
	case EventDrawUpdate:
		e.tip, e.hasTip = ev.Pos, true
		e.Pencil.Update(ev.Pos)
	case EventDrawEnd:
		e.Pencil.TriggerUp()
		e.sampleTip()
	case EventTipColor:
		e.Pencil.SetTipColor(ev.Color)
	case EventPointerRay:
		e.pointer, e.hasPointer = ev.Ray, true
	case EventGazeRay:
		e.gaze, e.hasGaze = ev.Ray, true
	case EventSelectCommit:
		e.active.Commit()
	case EventSelectToggle:
		if e.active.Selector.Selected() != nil {
			e.active.Execute(command.Command{Intent: command.IntentDeselect, FromMenu: true})
		} else {
			e.active.Commit()
		}
	case EventVoiceTranscript:
		e.active.HandleTranscript(ev.Text)
	case EventMenuAction:
		e.active.HandleMenuAction(ev.Text)
	case EventActivateWorkflow:
		e.Activate(ev.Workflow)
	case EventMoveSurface:
		s, ok := e.Surfaces.Get(ev.SurfaceID)
		if !ok {
			log.Printf("[ENGINE] Move of unknown surface %s", ev.SurfaceID)
			return
		}
		s.Move(ev.Pos)
	case eventCall:
		ev.fn()
		close(ev.done)
	default:
		log.Printf("[ENGINE] Dropped event %s", ev.Kind)
	}
}

func (e *Engine) sampleTip() {
	if e.hasTip {
		e.Pencil.Update(e.tip)
	}
}

// flush sends every stroke whose revision changed since it was last shown,
// and hides strokes that were deleted.
func (e *Engine) flush() {
	e.sinksMu.Lock()
	sinks := append([]RenderSink(nil), e.sinks...)
	e.sinksMu.Unlock()

	strokes := e.Registry.All()
	if cur := e.Pencil.Current(); cur != nil {
		strokes = append(strokes, cur)
	}
	for _, s := range strokes {
		last, shown := e.shown[s.ID]
		if !s.Live() {
			if shown {
				delete(e.shown, s.ID)
				for _, sink := range sinks {
					sink.Hide(s.ID)
				}
			}
			continue
		}
		rev := s.Revision()
		if shown && rev == last {
			continue
		}
		e.shown[s.ID] = rev
		pts, c := s.WorldPoints(), s.DisplayColor()
		for _, sink := range sinks {
			sink.Render(s.ID, geom.Clone(pts), c)
		}
	}
}

// Do runs fn on the tick goroutine during the next tick and waits for it.
func (e *Engine) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	e.queue.Push(Event{Kind: eventCall, fn: fn, done: done})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run ticks every interval until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("[ENGINE] Ticking every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[ENGINE] Stopped")
			return nil
		case now := <-ticker.C:
			e.Tick(now)
		}
	}
}
