package ui

import (
	"image/color"
	"sort"
	"sync"

	"VRBoard/internal/export"
	"VRBoard/internal/geom"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	defaultZoom = 300 // pixels per meter
	minZoom     = 20
	maxZoom     = 5000
	gridStep    = 0.1 // meters
	strokeWidth = 2
)

var (
	backgroundColor = color.NRGBA{R: 245, G: 246, B: 248, A: 255}
	gridColor       = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
)

type previewStroke struct {
	points []geom.Vec3
	color  color.NRGBA
	order  int
}

type segment struct {
	a, b  fyne.Position
	color color.NRGBA
}

// Preview is a desktop window onto the scene. It implements
// engine.RenderSink and draws strokes flattened along its view.
type Preview struct {
	widget.BaseWidget

	mu      sync.RWMutex
	strokes map[string]*previewStroke
	next    int

	view       export.View
	zoom       float32
	panX, panY float32
	showGrid   bool
}

var _ fyne.Widget = (*Preview)(nil)
var _ fyne.Draggable = (*Preview)(nil)
var _ fyne.Scrollable = (*Preview)(nil)

func NewPreview(view export.View) *Preview {
	p := &Preview{
		strokes:  make(map[string]*previewStroke),
		view:     view,
		zoom:     defaultZoom,
		showGrid: true,
	}
	p.ExtendBaseWidget(p)
	return p
}

// Render stores a stroke frame; safe from any goroutine.
func (p *Preview) Render(id string, points []geom.Vec3, c color.NRGBA) {
	p.store(id, points, c)
	fyne.Do(p.Refresh)
}

// Hide removes a stroke; safe from any goroutine.
func (p *Preview) Hide(id string) {
	p.remove(id)
	fyne.Do(p.Refresh)
}

func (p *Preview) store(id string, points []geom.Vec3, c color.NRGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.strokes[id]; ok {
		s.points, s.color = points, c
		return
	}
	p.strokes[id] = &previewStroke{points: points, color: c, order: p.next}
	p.next++
}

func (p *Preview) remove(id string) {
	p.mu.Lock()
	delete(p.strokes, id)
	p.mu.Unlock()
}

func (p *Preview) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.strokes)
}

func (p *Preview) SetView(v export.View) {
	p.view = v
	p.Refresh()
}

func (p *Preview) ResetView() {
	p.zoom = defaultZoom
	p.panX, p.panY = 0, 0
	p.Refresh()
}

func (p *Preview) ToggleGrid() {
	p.showGrid = !p.showGrid
	p.Refresh()
}

// toScreen maps a world point to widget coordinates: the world origin sits
// at the widget center and world up is screen up.
func (p *Preview) toScreen(pt geom.Vec3, size fyne.Size) fyne.Position {
	x, y := p.view.Project(pt)
	return fyne.NewPos(size.Width/2+p.panX+x*p.zoom, size.Height/2+p.panY-y*p.zoom)
}

// segments lists the line segments of every stroke in creation order.
func (p *Preview) segments(size fyne.Size) []segment {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ordered := make([]*previewStroke, 0, len(p.strokes))
	for _, s := range p.strokes {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].order < ordered[j].order })

	var segs []segment
	for _, s := range ordered {
		if len(s.points) == 1 {
			pos := p.toScreen(s.points[0], size)
			segs = append(segs, segment{a: pos, b: pos.AddXY(1, 0), color: s.color})
			continue
		}
		for i := 1; i < len(s.points); i++ {
			segs = append(segs, segment{
				a:     p.toScreen(s.points[i-1], size),
				b:     p.toScreen(s.points[i], size),
				color: s.color,
			})
		}
	}
	return segs
}

func (p *Preview) Dragged(e *fyne.DragEvent) {
	p.panX += e.Dragged.DX
	p.panY += e.Dragged.DY
	p.Refresh()
}

func (p *Preview) DragEnd() {}

// Scrolled zooms around the widget center.
func (p *Preview) Scrolled(e *fyne.ScrollEvent) {
	if e.Scrolled.DY > 0 {
		p.zoom *= 1.2
	} else {
		p.zoom /= 1.2
	}
	if p.zoom > maxZoom {
		p.zoom = maxZoom
	}
	if p.zoom < minZoom {
		p.zoom = minZoom
	}
	p.Refresh()
}

func (p *Preview) CreateRenderer() fyne.WidgetRenderer {
	r := &previewRenderer{preview: p, background: canvas.NewRectangle(backgroundColor)}
	r.rebuild()
	return r
}

type previewRenderer struct {
	preview    *Preview
	background *canvas.Rectangle
	size       fyne.Size
	objects    []fyne.CanvasObject
}

func (r *previewRenderer) rebuild() {
	objects := []fyne.CanvasObject{r.background}
	if r.preview.showGrid {
		objects = append(objects, r.grid()...)
	}
	for _, s := range r.preview.segments(r.size) {
		line := canvas.NewLine(s.color)
		line.StrokeWidth = strokeWidth
		line.Position1, line.Position2 = s.a, s.b
		objects = append(objects, line)
	}
	r.objects = objects
}

func (r *previewRenderer) grid() []fyne.CanvasObject {
	step := gridStep * r.preview.zoom
	if step < 8 {
		return nil
	}
	var lines []fyne.CanvasObject
	cx := r.size.Width/2 + r.preview.panX
	cy := r.size.Height/2 + r.preview.panY
	for x := cx - step*float32(int(cx/step)); x < r.size.Width; x += step {
		line := canvas.NewLine(gridColor)
		line.Position1, line.Position2 = fyne.NewPos(x, 0), fyne.NewPos(x, r.size.Height)
		line.StrokeWidth = 0.5
		lines = append(lines, line)
	}
	for y := cy - step*float32(int(cy/step)); y < r.size.Height; y += step {
		line := canvas.NewLine(gridColor)
		line.Position1, line.Position2 = fyne.NewPos(0, y), fyne.NewPos(r.size.Width, y)
		line.StrokeWidth = 0.5
		lines = append(lines, line)
	}
	return lines
}

func (r *previewRenderer) Layout(size fyne.Size) {
	r.size = size
	r.background.Resize(size)
	r.rebuild()
}

func (r *previewRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *previewRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *previewRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.preview)
}

func (r *previewRenderer) Destroy() {}
