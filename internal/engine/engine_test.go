package engine

import (
	"context"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"VRBoard/internal/capture"
	"VRBoard/internal/command"
	"VRBoard/internal/geom"
	"VRBoard/internal/selection"
	"VRBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.NRGBA{A: 255}

type frame struct {
	points []geom.Vec3
	color  color.NRGBA
}

type recordingSink struct {
	renders map[string][]frame
	hidden  []string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{renders: make(map[string][]frame)}
}

func (r *recordingSink) Render(id string, pts []geom.Vec3, c color.NRGBA) {
	r.renders[id] = append(r.renders[id], frame{pts, c})
}

func (r *recordingSink) Hide(id string) { r.hidden = append(r.hidden, id) }

func (r *recordingSink) count() int {
	n := 0
	for _, f := range r.renders {
		n += len(f)
	}
	return n
}

func testConfig() Config {
	return Config{
		Capture: capture.Config{Mode: capture.ModeTrigger, MinDistance: 0.001},
		Workflow: command.Config{
			Selection: selection.Config{
				SelectionRadius: 0.05,
				MaxRayLength:    10,
				SwitchLockTime:  300 * time.Millisecond,
				SwitchThreshold: 0.01,
				DeselectDelay:   200 * time.Millisecond,
				HoverTint:       color.NRGBA{R: 255, G: 255, A: 255},
				HoverBlend:      0.5,
				SelectColor:     color.NRGBA{G: 255, B: 255, A: 255},
			},
			MaxUndoSteps:      20,
			RoundResolution:   30,
			SimplifyTolerance: 0.01,
			RecolorColor:      black,
		},
		DefaultWorkflow: command.KindRayMenu,
	}
}

func newEngine(t *testing.T) (*Engine, *recordingSink) {
	t.Helper()
	e := New(testConfig(), nil)
	sink := newRecordingSink()
	e.AddSink(sink)
	return e, sink
}

// addVertical registers a stroke parallel to Y crossing z=1 at x.
func addVertical(t *testing.T, e *Engine, x float32) *state.Stroke {
	t.Helper()
	s := state.NewStroke(black, nil)
	s.SetPoints([]geom.Vec3{geom.V3(x, -0.5, 1), geom.V3(x, 0.5, 1)})
	require.True(t, e.Registry.Add(s))
	return s
}

func forward(x float32) geom.Ray { return geom.NewRay(geom.V3(x, 0, 0), geom.Forward) }

func TestCaptureThroughEvents(t *testing.T) {
	e, sink := newEngine(t)
	now := time.Unix(0, 0)

	e.Push(DrawStart())
	e.Push(DrawUpdate(geom.V3(0, 0, 0)))
	e.Push(DrawUpdate(geom.V3(0.002, 0, 0)))
	e.Push(DrawUpdate(geom.V3(0.0021, 0, 0)))
	e.Push(DrawEnd())
	e.Tick(now)

	require.Equal(t, 1, e.Registry.Len())
	s := e.Registry.All()[0]
	assert.Equal(t, 2, s.Len())
	require.Len(t, sink.renders[s.ID], 1)
	assert.Equal(t, s.Points(), sink.renders[s.ID][0].points)

	e.Tick(now.Add(time.Millisecond))
	assert.Equal(t, 1, sink.count(), "unchanged strokes are not resent")
}

func TestInProgressStrokeIsRendered(t *testing.T) {
	e, sink := newEngine(t)
	e.Push(DrawStart())
	e.Push(DrawUpdate(geom.V3(0, 0, 0)))
	e.Tick(time.Unix(0, 0))

	cur := e.Pencil.Current()
	require.NotNil(t, cur)
	assert.Len(t, sink.renders[cur.ID], 1)
	assert.Equal(t, 0, e.Registry.Len(), "registered only when finished")
}

func TestRayMenuDeleteHidesStroke(t *testing.T) {
	e, sink := newEngine(t)
	s := addVertical(t, e, 0)
	now := time.Unix(0, 0)

	e.Tick(now)
	require.Len(t, sink.renders[s.ID], 1)

	e.Push(PointerRay(forward(0)))
	e.Tick(now.Add(time.Millisecond))
	assert.Same(t, s, e.Active().Selector.Hovered())
	require.Len(t, sink.renders[s.ID], 2, "hover highlight resent")
	assert.NotEqual(t, black, sink.renders[s.ID][1].color)

	e.Push(SelectCommit())
	e.Push(MenuAction("delete"))
	e.Tick(now.Add(2 * time.Millisecond))
	assert.False(t, s.Live())
	assert.Equal(t, []string{s.ID}, sink.hidden)

	e.Push(MenuAction("undo"))
	e.Tick(now.Add(3 * time.Millisecond))
	assert.True(t, s.Live())
	assert.Len(t, sink.renders[s.ID], 3)
}

func TestSelectToggle(t *testing.T) {
	e, _ := newEngine(t)
	s := addVertical(t, e, 0)
	now := time.Unix(0, 0)

	e.Push(PointerRay(forward(0)))
	e.Tick(now)
	e.Push(SelectToggle())
	e.Tick(now)
	assert.Same(t, s, e.Active().Selector.Selected())

	e.Push(SelectToggle())
	e.Push(PointerRay(forward(5)))
	e.Tick(now)
	assert.Nil(t, e.Active().Selector.Selected())
	assert.False(t, s.Highlighted())
}

func TestGazeVoiceThroughEvents(t *testing.T) {
	e, _ := newEngine(t)
	s := addVertical(t, e, 0)
	now := time.Unix(0, 0)

	e.Push(ActivateWorkflow(command.KindGazeVoice))
	e.Push(GazeRay(forward(0.01)))
	e.Tick(now)
	require.Equal(t, command.KindGazeVoice, e.Active().Kind())
	require.Same(t, s, e.Active().Selector.Target())

	e.Push(VoiceTranscript("make it red"))
	e.Tick(now.Add(10 * time.Millisecond))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, s.Color())
}

func TestActivateClearsPreviousWorkflow(t *testing.T) {
	e, _ := newEngine(t)
	s := addVertical(t, e, 0)

	e.Push(PointerRay(forward(0)))
	e.Tick(time.Unix(0, 0))
	require.True(t, s.Highlighted())

	e.Activate(command.KindGazeVoice)
	assert.False(t, s.Highlighted())
	assert.False(t, e.Workflow(command.KindRayMenu).Active())
	assert.True(t, e.Workflow(command.KindGazeVoice).Active())
}

func TestMovedSurfaceRerendersAttachedStrokes(t *testing.T) {
	cfg := testConfig()
	cfg.Capture = capture.Config{Mode: capture.ModeAutomatic, MinDistance: 0.002, SurfaceRelative: true}
	surfaces := state.NewSurfaceSet(0.01)
	board := state.NewSurface("board", geom.V3(0, 0, 1), geom.V3(0, 0, -1), geom.Up, 1, 1)
	surfaces.Add(board)

	e := New(cfg, surfaces)
	sink := newRecordingSink()
	e.AddSink(sink)
	now := time.Unix(0, 0)

	e.Push(DrawUpdate(geom.V3(0, 0, 1)))
	e.Push(DrawUpdate(geom.V3(0.1, 0, 1)))
	e.Push(DrawUpdate(geom.V3(0.1, 0, 0.5)))
	e.Tick(now)
	require.Equal(t, 1, e.Registry.Len())
	s := e.Registry.All()[0]
	require.Len(t, sink.renders[s.ID], 1)

	e.Push(MoveSurface(board.ID, geom.V3(0, 1, 1)))
	e.Tick(now.Add(time.Millisecond))
	require.Len(t, sink.renders[s.ID], 2)
	moved := sink.renders[s.ID][1].points
	assert.InDelta(t, 1, moved[0].Y, 1e-5)
}

func TestDoRunsOnTick(t *testing.T) {
	e, _ := newEngine(t)
	var ran atomic.Bool
	errc := make(chan error, 1)
	go func() {
		errc <- e.Do(context.Background(), func() { ran.Store(true) })
	}()

	require.Eventually(t, func() bool {
		e.Tick(time.Now())
		return ran.Load()
	}, time.Second, time.Millisecond)
	assert.NoError(t, <-errc)
}

func TestDoCancelled(t *testing.T) {
	e, _ := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Do(ctx, func() {}), context.Canceled)
}

func TestRunStopsWithContext(t *testing.T) {
	e, _ := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, time.Millisecond) }()

	var ran atomic.Bool
	require.NoError(t, e.Do(ctx, func() { ran.Store(true) }))
	assert.True(t, ran.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestQueueOrder(t *testing.T) {
	var q Queue
	q.Push(VoiceTranscript("a"))
	q.Push(VoiceTranscript("b"))
	assert.Equal(t, 2, q.Len())

	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, "b", got[1].Text)
	assert.Empty(t, q.Drain())
}

func TestParseEventKind(t *testing.T) {
	k, ok := ParseEventKind("draw_update")
	assert.True(t, ok)
	assert.Equal(t, EventDrawUpdate, k)

	_, ok = ParseEventKind("call")
	assert.False(t, ok)
}
