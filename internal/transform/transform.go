// Package transform rewrites the points or appearance of a single stroke.
//
// Transforms mutate in place and never record undo history; callers push a
// snapshot first. Every transform is a no-op on a nil or soft-deleted stroke
// and on strokes shorter than the transform needs.
package transform

import (
	"image/color"

	"VRBoard/internal/geom"
	"VRBoard/internal/state"
)

// Kind names a transform.
type Kind int

const (
	KindRecolor Kind = iota
	KindLinearize
	KindRound
	KindSimplify
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindRecolor:
		return "recolor"
	case KindLinearize:
		return "linearize"
	case KindRound:
		return "round"
	case KindSimplify:
		return "simplify"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

const (
	DefaultRoundResolution = 30

	// straightRatio is the chord-relative deviation below which a stroke
	// is treated as straight when rounding.
	straightRatio = 0.02
	// defaultBulge is the chord-relative deviation given to straight strokes.
	defaultBulge = 0.25
)

// MinPoints is the smallest stroke kind can operate on.
func MinPoints(kind Kind) int {
	if kind == KindSimplify {
		return 3
	}
	return 2
}

// CanApply reports whether kind would change s.
func CanApply(kind Kind, s *state.Stroke) bool {
	if s == nil || !s.Live() || s.Len() < MinPoints(kind) {
		return false
	}
	if kind == KindRound {
		return roundable(s.Points())
	}
	return true
}

// roundable rejects closed strokes that are not circles: their arc would
// have a zero chord and collapse onto the start point.
func roundable(pts []geom.Vec3) bool {
	if pts[len(pts)-1].Sub(pts[0]).Length() >= geom.Epsilon {
		return true
	}
	_, _, ok := geom.DetectCircle(pts)
	return ok
}

// Recolor sets the true color of s.
func Recolor(s *state.Stroke, c color.NRGBA) bool {
	if !CanApply(KindRecolor, s) {
		return false
	}
	s.SetColor(c)
	return true
}

// Linearize keeps only the first and last point.
func Linearize(s *state.Stroke) bool {
	if !CanApply(KindLinearize, s) {
		return false
	}
	pts := s.Points()
	s.SetPoints([]geom.Vec3{pts[0], pts[len(pts)-1]})
	return true
}

// Round replaces s with a perfect circle when it looks like one, otherwise
// with a quadratic arc between its endpoints. Circles lie flat on the
// drawing surface; arcs bulge toward the point of greatest deviation, or a
// perpendicular of a quarter chord for strokes that are nearly straight.
func Round(s *state.Stroke, resolution int) bool {
	if !CanApply(KindRound, s) {
		return false
	}
	if resolution <= 0 {
		resolution = DefaultRoundResolution
	}
	pts := s.Points()

	if center, radius, ok := geom.DetectCircle(pts); ok {
		normal, hasSurface := s.PlaneNormal()
		if !hasSurface {
			normal = geom.NewellNormal(pts)
		}
		s.SetPoints(geom.GenerateCircle(center, radius, normal, resolution))
		return true
	}

	start, end := pts[0], pts[len(pts)-1]
	chord := end.Sub(start)
	chordLen := chord.Length()

	dev := geom.MaxDeviation(pts)
	height, dir := dev.Distance, dev.Direction
	if dev.Index < 0 || height < straightRatio*chordLen || dir.IsZero() {
		normal, _ := s.PlaneNormal()
		height = defaultBulge * chordLen
		dir = geom.Perpendicular(chord.Normal(), normal)
	}

	// A quadratic Bezier peaks halfway to its control point.
	s.SetPoints(geom.GenerateQuadraticCurve(start, end, dir, 2*height, resolution))
	return true
}

// Simplify reduces s with Douglas-Peucker at the given tolerance.
func Simplify(s *state.Stroke, tolerance float32) bool {
	if !CanApply(KindSimplify, s) {
		return false
	}
	s.SetPoints(geom.Simplify(s.Points(), tolerance))
	return true
}

// Delete soft-deletes s; its points are kept for undo.
func Delete(s *state.Stroke) bool {
	if !CanApply(KindDelete, s) {
		return false
	}
	s.ClearHighlight()
	s.SetLive(false)
	return true
}
