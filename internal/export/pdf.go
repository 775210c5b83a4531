// Package export renders live strokes to a PDF page.
package export

import (
	"fmt"
	"image/color"
	"io"

	"VRBoard/internal/geom"
	"VRBoard/internal/state"

	"github.com/chewxy/math32"
	"github.com/jung-kurt/gofpdf"
)

// View is the orthographic direction strokes are flattened along.
type View int

const (
	// ViewFront looks along +Z: X right, Y up.
	ViewFront View = iota
	// ViewTop looks down -Y: X right, Z up the page.
	ViewTop
	// ViewSide looks along -X: Z right, Y up.
	ViewSide
)

var viewNames = []string{"front", "top", "side"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return "unknown"
}

func ParseView(name string) (View, bool) {
	for i, n := range viewNames {
		if n == name {
			return View(i), true
		}
	}
	return ViewFront, false
}

// Project maps a world point to 2D view coordinates with the second axis up.
func (v View) Project(p geom.Vec3) (x, y float32) {
	switch v {
	case ViewTop:
		return p.X, p.Z
	case ViewSide:
		return p.Z, p.Y
	default:
		return p.X, p.Y
	}
}

// Stroke is a copy of a stroke's world geometry taken for export.
type Stroke struct {
	ID     string
	Points []geom.Vec3
	Color  color.NRGBA
}

// FromStrokes copies the live strokes. It must run where the strokes are
// not being mutated.
func FromStrokes(strokes []*state.Stroke) []Stroke {
	out := make([]Stroke, 0, len(strokes))
	for _, s := range strokes {
		if !s.Live() || s.Len() == 0 {
			continue
		}
		out = append(out, Stroke{ID: s.ID, Points: s.WorldPoints(), Color: s.Color()})
	}
	return out
}

const (
	pageW, pageH = 210.0, 297.0
	margin       = 15.0
	lineWidth    = 0.4
	tapRadius    = 0.6
)

// Layout maps view coordinates to page millimeters, uniformly scaled and
// centered inside the margins. The page Y axis points down.
type Layout struct {
	Scale      float32
	OffX, OffY float32
	MinX, MaxY float32
}

// Fit computes the layout that fits every stroke on the page.
func Fit(strokes []Stroke, view View) Layout {
	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)
	for _, s := range strokes {
		for _, p := range s.Points {
			x, y := view.Project(p)
			minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
			minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
		}
	}
	if math32.IsInf(minX, 1) {
		return Layout{Scale: 1, OffX: margin, OffY: margin}
	}

	availW, availH := float32(pageW-2*margin), float32(pageH-2*margin)
	w, h := maxX-minX, maxY-minY
	scale := float32(1000) // 1:1 for drawings smaller than the page
	if w > 0 {
		scale = math32.Min(scale, availW/w)
	}
	if h > 0 {
		scale = math32.Min(scale, availH/h)
	}
	return Layout{
		Scale: scale,
		OffX:  margin + (availW-w*scale)/2,
		OffY:  margin + (availH-h*scale)/2,
		MinX:  minX,
		MaxY:  maxY,
	}
}

// Page converts view coordinates to page millimeters.
func (l Layout) Page(x, y float32) (float64, float64) {
	return float64(l.OffX + (x-l.MinX)*l.Scale), float64(l.OffY + (l.MaxY-y)*l.Scale)
}

// WritePDF draws strokes as polylines in their true colors on one A4 page.
func WritePDF(w io.Writer, strokes []Stroke, view View) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(fmt.Sprintf("VRBoard sketch (%s view)", view), true)
	p.SetCreator("sketchd", true)
	p.AddPage()
	p.SetLineWidth(lineWidth)
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	l := Fit(strokes, view)
	for _, st := range strokes {
		p.SetDrawColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
		if len(st.Points) == 1 {
			p.SetFillColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
			x, y := l.Page(view.Project(st.Points[0]))
			p.Circle(x, y, tapRadius, "F")
			continue
		}
		for i, pt := range st.Points {
			x, y := l.Page(view.Project(pt))
			if i == 0 {
				p.MoveTo(x, y)
			} else {
				p.LineTo(x, y)
			}
		}
		p.DrawPath("D")
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
