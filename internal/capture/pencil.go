// Package capture turns a moving pencil tip into strokes.
package capture

import (
	"image/color"
	"log"

	"VRBoard/internal/geom"
	"VRBoard/internal/state"
)

// Mode selects what starts and stops drawing.
type Mode int

const (
	ModeAutomatic Mode = iota // draw while the tip touches a surface
	ModeTrigger               // draw while the trigger is held
	ModeEither
)

func (m Mode) String() string {
	switch m {
	case ModeAutomatic:
		return "automatic"
	case ModeTrigger:
		return "trigger"
	case ModeEither:
		return "either"
	default:
		return "unknown"
	}
}

// ParseMode maps a configuration name to a Mode.
func ParseMode(name string) (Mode, bool) {
	for _, m := range []Mode{ModeAutomatic, ModeTrigger, ModeEither} {
		if m.String() == name {
			return m, true
		}
	}
	return ModeAutomatic, false
}

// State of the pencil.
type State int

const (
	Idle State = iota
	Capturing
)

func (s State) String() string {
	if s == Capturing {
		return "capturing"
	}
	return "idle"
}

// SurfaceProvider reports whether a drawable surface is in reach of the tip.
type SurfaceProvider interface {
	Contact(tip geom.Vec3) (state.Contact, bool)
}

// Config tunes the pencil.
type Config struct {
	Mode Mode
	// MinDistance is the minimum spacing between consecutive points.
	MinDistance float32
	// SurfaceOffset lifts projected points off the plane to avoid z-fighting.
	SurfaceOffset float32
	// SurfaceRelative stores strokes in the local frame of their surface.
	SurfaceRelative bool
}

// Pencil builds one stroke at a time from tip samples.
type Pencil struct {
	cfg      Config
	registry *state.Registry
	surfaces SurfaceProvider

	state    State
	current  *state.Stroke
	surface  *state.Surface
	trigger  bool
	tip      geom.Vec3
	tipColor color.NRGBA

	// OnComplete is called after a finished stroke is registered.
	OnComplete func(*state.Stroke)
}

// NewPencil creates an idle pencil. surfaces may be nil for free-air drawing.
func NewPencil(cfg Config, registry *state.Registry, surfaces SurfaceProvider) *Pencil {
	return &Pencil{
		cfg:      cfg,
		registry: registry,
		surfaces: surfaces,
		tipColor: color.NRGBA{A: 255},
	}
}

func (p *Pencil) State() State { return p.state }

// Current is the stroke being drawn, nil while idle.
func (p *Pencil) Current() *state.Stroke { return p.current }

// SetTipColor sets the color of strokes started from now on.
func (p *Pencil) SetTipColor(c color.NRGBA) { p.tipColor = c }

func (p *Pencil) TipColor() color.NRGBA { return p.tipColor }

// TriggerDown records a trigger press; the stroke starts on the next Update
// at the tip position it reports.
func (p *Pencil) TriggerDown() { p.trigger = true }

// TriggerUp records a trigger release.
func (p *Pencil) TriggerUp() { p.trigger = false }

// Update advances the state machine with the tip position for this frame.
func (p *Pencil) Update(tip geom.Vec3) {
	p.tip = tip

	var contact state.Contact
	touching := false
	if p.surfaces != nil {
		contact, touching = p.surfaces.Contact(tip)
	}

	drawing := p.shouldDraw(touching)

	if p.state == Capturing && touching && p.surface != nil && contact.Surface != p.surface {
		p.finish()
		if drawing {
			p.begin(contact, touching)
		}
		return
	}

	switch {
	case p.state == Idle && drawing:
		p.begin(contact, touching)
	case p.state == Capturing && !drawing:
		p.finish()
	case p.state == Capturing:
		p.sample(contact, touching)
	}
}

// Cancel finishes any stroke in progress.
func (p *Pencil) Cancel() {
	if p.state == Capturing {
		p.finish()
	}
	p.trigger = false
}

func (p *Pencil) shouldDraw(touching bool) bool {
	switch p.cfg.Mode {
	case ModeTrigger:
		return p.trigger
	case ModeEither:
		return p.trigger || touching
	default:
		return touching
	}
}

func (p *Pencil) begin(contact state.Contact, touching bool) {
	var surface *state.Surface
	if touching && p.cfg.SurfaceRelative {
		surface = contact.Surface
	}
	p.current = state.NewStroke(p.tipColor, surface)
	p.surface = nil
	if touching {
		p.surface = contact.Surface
	}
	p.state = Capturing
	p.current.Append(p.toFrame(p.position(contact, touching)))
}

func (p *Pencil) sample(contact state.Contact, touching bool) {
	pos := p.toFrame(p.position(contact, touching))
	last, ok := p.current.Last()
	if ok && pos.DistanceTo(last) < p.cfg.MinDistance {
		return
	}
	p.current.Append(pos)
}

func (p *Pencil) finish() {
	s := p.current
	p.current = nil
	p.surface = nil
	p.state = Idle
	if s == nil {
		return
	}
	p.registry.Add(s)
	if s.Len() < 2 {
		log.Printf("[CAPTURE] Stroke %s is a single-point tap", s.ID)
	}
	if p.OnComplete != nil {
		p.OnComplete(s)
	}
}

// position is the world point to record: the tip projected onto the
// touched surface and lifted along its normal, or the raw tip.
func (p *Pencil) position(contact state.Contact, touching bool) geom.Vec3 {
	if !touching {
		return p.tip
	}
	return contact.Point.Add(contact.Normal.Scale(p.cfg.SurfaceOffset))
}

func (p *Pencil) toFrame(world geom.Vec3) geom.Vec3 {
	if p.current.Frame == state.FrameSurface && p.current.Surface != nil {
		return p.current.Surface.ToLocal(world)
	}
	return world
}
