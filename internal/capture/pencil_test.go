package capture

import (
	"image/color"
	"testing"

	"VRBoard/internal/geom"
	"VRBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerCaptureSpacing(t *testing.T) {
	reg := state.NewRegistry()
	p := NewPencil(Config{Mode: ModeTrigger, MinDistance: 0.001}, reg, nil)

	var completed *state.Stroke
	p.OnComplete = func(s *state.Stroke) { completed = s }

	p.TriggerDown()
	p.Update(geom.V3(0, 0, 0))
	require.Equal(t, Capturing, p.State())
	p.Update(geom.V3(0, 0, 0.002))
	assert.Equal(t, 2, p.Current().Len())

	p.Update(geom.V3(0, 0, 0.0021))
	assert.Equal(t, 2, p.Current().Len(), "sample closer than MinDistance is dropped")

	assert.Zero(t, reg.Len(), "not registered until finished")

	p.TriggerUp()
	p.Update(geom.V3(0, 0, 0.01))
	assert.Equal(t, Idle, p.State())
	require.NotNil(t, completed)
	assert.Equal(t, []geom.Vec3{geom.V3(0, 0, 0), geom.V3(0, 0, 0.002)}, completed.Points())
	assert.Equal(t, 1, reg.Len())
}

func TestTapRegistersSinglePoint(t *testing.T) {
	reg := state.NewRegistry()
	p := NewPencil(Config{Mode: ModeTrigger, MinDistance: 0.001}, reg, nil)

	p.TriggerDown()
	p.Update(geom.V3(1, 1, 1))
	p.TriggerUp()
	p.Update(geom.V3(1, 1, 1))

	require.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, reg.All()[0].Len())
}

func TestColorFixedAtStart(t *testing.T) {
	reg := state.NewRegistry()
	p := NewPencil(Config{Mode: ModeTrigger}, reg, nil)
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	p.SetTipColor(red)
	p.TriggerDown()
	p.Update(geom.Zero)
	p.SetTipColor(blue)
	p.Update(geom.V3(0, 0, 1))
	p.Cancel()

	require.Equal(t, 1, reg.Len())
	assert.Equal(t, red, reg.All()[0].Color())
}

func board(tag string, x float32) *state.Surface {
	return state.NewSurface(tag, geom.V3(x, 0, 1), geom.V3(0, 0, -1), geom.Up, 0.5, 0.5)
}

func TestAutomaticModeProjectsOntoSurface(t *testing.T) {
	reg := state.NewRegistry()
	surfaces := state.NewSurfaceSet(0.02)
	wall := board("wall", 0)
	surfaces.Add(wall)

	p := NewPencil(Config{Mode: ModeAutomatic, MinDistance: 0.001, SurfaceOffset: 0.001}, reg, surfaces)

	p.Update(geom.V3(0, 0, 0.5))
	assert.Equal(t, Idle, p.State(), "tip away from the wall")

	p.Update(geom.V3(0, 0, 0.99))
	require.Equal(t, Capturing, p.State())
	p.Update(geom.V3(0.1, 0, 1.01))
	p.Update(geom.V3(0.1, 0, 0.5))
	assert.Equal(t, Idle, p.State(), "lifting the tip ends the stroke")

	require.Equal(t, 1, reg.Len())
	s := reg.All()[0]
	assert.Equal(t, state.FrameWorld, s.Frame)
	pts := s.WorldPoints()
	require.Len(t, pts, 2)
	// the wall faces -Z, so the lift moves points toward the viewer
	assert.True(t, pts[0].ApproxEqual(geom.V3(0, 0, 0.999), 1e-5), "%v", pts[0])
	assert.True(t, pts[1].ApproxEqual(geom.V3(0.1, 0, 0.999), 1e-5), "%v", pts[1])
}

func TestSurfaceRelativeStroke(t *testing.T) {
	reg := state.NewRegistry()
	surfaces := state.NewSurfaceSet(0.02)
	wall := board("wall", 0)
	surfaces.Add(wall)

	p := NewPencil(Config{Mode: ModeAutomatic, MinDistance: 0.001, SurfaceOffset: 0.001, SurfaceRelative: true}, reg, surfaces)
	p.Update(geom.V3(0, 0, 1))
	p.Update(geom.V3(0.2, 0, 1))
	p.Cancel()

	require.Equal(t, 1, reg.Len())
	s := reg.All()[0]
	assert.Equal(t, state.FrameSurface, s.Frame)
	assert.Same(t, wall, s.Surface)
	for _, pt := range s.Points() {
		assert.InDelta(t, 0.001, pt.Z, 1e-5, "local Z is the surface offset")
	}

	wall.Move(geom.V3(0, 1, 1))
	assert.True(t, s.WorldPoints()[1].ApproxEqual(geom.V3(0.2, 1, 0.999), 1e-5))
}

func TestSurfaceSwitchRestartsStroke(t *testing.T) {
	reg := state.NewRegistry()
	surfaces := state.NewSurfaceSet(0.02)
	left, right := board("left", 0), board("right", 1.2)
	surfaces.Add(left)
	surfaces.Add(right)

	var done []*state.Stroke
	p := NewPencil(Config{Mode: ModeAutomatic, MinDistance: 0.001, SurfaceRelative: true}, reg, surfaces)
	p.OnComplete = func(s *state.Stroke) { done = append(done, s) }

	p.Update(geom.V3(0.3, 0, 1))
	p.Update(geom.V3(0.4, 0, 1))
	p.Update(geom.V3(0.9, 0, 1))

	require.Len(t, done, 1)
	assert.Same(t, left, done[0].Surface)
	require.Equal(t, Capturing, p.State())
	assert.Same(t, right, p.Current().Surface)
	assert.Equal(t, 1, p.Current().Len())
}

func TestEitherMode(t *testing.T) {
	reg := state.NewRegistry()
	surfaces := state.NewSurfaceSet(0.02)
	surfaces.Add(board("wall", 0))
	p := NewPencil(Config{Mode: ModeEither, MinDistance: 0.001}, reg, surfaces)

	p.TriggerDown()
	p.Update(geom.V3(0, 0, 0.3))
	assert.Equal(t, Capturing, p.State(), "trigger draws in the air")
	p.TriggerUp()
	p.Update(geom.V3(0, 0, 0.3))
	assert.Equal(t, Idle, p.State())

	p.Update(geom.V3(0, 0, 1))
	assert.Equal(t, Capturing, p.State(), "touch draws without the trigger")
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("trigger")
	assert.True(t, ok)
	assert.Equal(t, ModeTrigger, m)
	_, ok = ParseMode("pen")
	assert.False(t, ok)
}
