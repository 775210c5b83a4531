package undo

import (
	"image/color"
	"testing"

	"VRBoard/internal/geom"
	"VRBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 255, A: 255}
)

func newStroke() *state.Stroke {
	s := state.NewStroke(black, nil)
	s.SetPoints([]geom.Vec3{geom.V3(0, 0, 0), geom.V3(0.5, 0.1, 0), geom.V3(1, 0, 0)})
	return s
}

func TestUndoRecolor(t *testing.T) {
	l := New(5)
	s := newStroke()

	l.Push(s, false)
	s.SetColor(red)

	got, ok := l.Undo()
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, black, s.Color())
	assert.Zero(t, l.Len())
}

func TestUndoRestoresTrueColorUnderHighlight(t *testing.T) {
	l := New(5)
	s := newStroke()
	yellow := color.NRGBA{R: 255, G: 255, A: 255}
	s.SetHighlight(yellow)

	l.Push(s, false)
	assert.Equal(t, black, l.ring[0].Color, "snapshot ignores the overlay")
	s.SetColor(red)

	l.Undo()
	assert.Equal(t, yellow, s.DisplayColor(), "overlay survives undo")
	s.ClearHighlight()
	assert.Equal(t, black, s.DisplayColor())
}

func TestUndoPoints(t *testing.T) {
	l := New(5)
	s := newStroke()
	before := s.Points()

	l.Push(s, false)
	s.SetPoints([]geom.Vec3{before[0], before[2]})

	l.Undo()
	assert.Equal(t, before, s.Points())
}

func TestUndoDelete(t *testing.T) {
	l := New(5)
	s := newStroke()
	before := s.Points()

	l.Push(s, true)
	s.SetLive(false)

	l.Undo()
	assert.True(t, s.Live())
	assert.Equal(t, before, s.Points())
}

func TestUndoUnderflow(t *testing.T) {
	l := New(3)
	got, ok := l.Undo()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestEvictsOldest(t *testing.T) {
	const maxSteps = 4
	l := New(maxSteps)
	strokes := make([]*state.Stroke, maxSteps+1)
	for i := range strokes {
		strokes[i] = newStroke()
		l.Push(strokes[i], false)
	}
	assert.Equal(t, maxSteps, l.Len())

	for i := maxSteps; i >= 1; i-- {
		got, ok := l.Undo()
		require.True(t, ok)
		assert.Same(t, strokes[i], got, "newest first")
	}
	assert.Zero(t, l.Len())
	_, ok := l.Undo()
	assert.False(t, ok, "the oldest snapshot was evicted")
}

func TestWrapAroundKeepsOrder(t *testing.T) {
	l := New(3)
	a, b, c, d := newStroke(), newStroke(), newStroke(), newStroke()
	l.Push(a, false)
	l.Push(b, false)
	l.Undo()
	l.Push(c, false)
	l.Push(d, false)
	l.Push(a, true)

	var order []*state.Stroke
	for l.Len() > 0 {
		s, _ := l.Undo()
		order = append(order, s)
	}
	assert.Equal(t, []*state.Stroke{a, d, c}, order)
}

func TestDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultMaxSteps, New(0).Cap())
	l := New(2)
	l.Push(newStroke(), false)
	l.Clear()
	assert.Zero(t, l.Len())
}
