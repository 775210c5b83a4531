package state

import (
	"image/color"
	"time"

	"VRBoard/internal/geom"

	"github.com/google/uuid"
)

// Frame is the reference frame a stroke's points are stored in.
type Frame int

const (
	FrameWorld   Frame = iota
	FrameSurface       // local to the owning surface; follows it when it moves
)

func (f Frame) String() string {
	if f == FrameSurface {
		return "surface"
	}
	return "world"
}

// Stroke is a single drawn polyline.
type Stroke struct {
	ID      string
	Frame   Frame
	Surface *Surface // frame owner, nil for free-air strokes
	Created time.Time

	points    []geom.Vec3
	color     color.NRGBA // true color
	highlight *color.NRGBA
	live      bool
	rev       uint64
}

// NewStroke creates a live stroke with no points. Strokes attached to a
// surface store their points in that surface's local frame.
func NewStroke(c color.NRGBA, surface *Surface) *Stroke {
	s := &Stroke{
		ID:      uuid.NewString(),
		Surface: surface,
		Created: time.Now(),
		color:   c,
		live:    true,
	}
	if surface != nil {
		s.Frame = FrameSurface
	}
	s.touch()
	return s
}

func (s *Stroke) touch() { s.rev = nextRevision() }

// Revision changes whenever the stroke or its owning surface changes.
func (s *Stroke) Revision() uint64 {
	if s.Surface != nil && s.Surface.Revision() > s.rev {
		return s.Surface.Revision()
	}
	return s.rev
}

func (s *Stroke) Len() int { return len(s.points) }

// Points returns a copy of the stored points, in the stroke's frame.
func (s *Stroke) Points() []geom.Vec3 { return geom.Clone(s.points) }

// SetPoints replaces the stored points with a copy of pts.
func (s *Stroke) SetPoints(pts []geom.Vec3) {
	s.points = geom.Clone(pts)
	s.touch()
}

// Append adds p, given in the stroke's frame.
func (s *Stroke) Append(p geom.Vec3) {
	s.points = append(s.points, p)
	s.touch()
}

// Last returns the most recently appended point.
func (s *Stroke) Last() (geom.Vec3, bool) {
	if len(s.points) == 0 {
		return geom.Zero, false
	}
	return s.points[len(s.points)-1], true
}

// WorldPoints resolves the stored points to world space through the frame owner.
func (s *Stroke) WorldPoints() []geom.Vec3 {
	if s.Frame != FrameSurface || s.Surface == nil {
		return geom.Clone(s.points)
	}
	out := make([]geom.Vec3, len(s.points))
	for i, p := range s.points {
		out[i] = s.Surface.ToWorld(p)
	}
	return out
}

// PlaneNormal returns the normal of the drawing surface expressed in the
// stroke's own frame.
func (s *Stroke) PlaneNormal() (geom.Vec3, bool) {
	if s.Surface == nil {
		return geom.Zero, false
	}
	if s.Frame == FrameSurface {
		return geom.Forward, true
	}
	return s.Surface.Normal(), true
}

// Color is the true color, unaffected by highlighting.
func (s *Stroke) Color() color.NRGBA { return s.color }

func (s *Stroke) SetColor(c color.NRGBA) {
	s.color = c
	s.touch()
}

// DisplayColor is the highlight overlay if one is set, else the true color.
func (s *Stroke) DisplayColor() color.NRGBA {
	if s.highlight != nil {
		return *s.highlight
	}
	return s.color
}

func (s *Stroke) SetHighlight(c color.NRGBA) {
	s.highlight = &c
	s.touch()
}

func (s *Stroke) ClearHighlight() {
	if s.highlight == nil {
		return
	}
	s.highlight = nil
	s.touch()
}

func (s *Stroke) Highlighted() bool { return s.highlight != nil }

// Live is false for soft-deleted strokes that may still be restored by undo.
func (s *Stroke) Live() bool { return s.live }

func (s *Stroke) SetLive(live bool) {
	if s.live == live {
		return
	}
	s.live = live
	s.touch()
}
