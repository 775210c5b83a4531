package net

import (
	"errors"
	"fmt"
	"image/color"

	"VRBoard/internal/command"
	"VRBoard/internal/engine"
	"VRBoard/internal/geom"

	"github.com/lucasb-eyer/go-colorful"
)

// Message types sent to peers. Inbound messages use engine event names.
const (
	TypeRender = "render"
	TypeHide   = "hide"
)

// Message is the JSON frame exchanged over the link.
type Message struct {
	Type     string      `json:"type"`
	Pos      *geom.Vec3  `json:"pos,omitempty"`
	Ray      *geom.Ray   `json:"ray,omitempty"`
	Text     string      `json:"text,omitempty"`
	Color    string      `json:"color,omitempty"`
	Workflow string      `json:"workflow,omitempty"`
	Surface  string      `json:"surface,omitempty"`
	ID       string      `json:"id,omitempty"`
	Points   []geom.Vec3 `json:"points,omitempty"`
}

var (
	ErrUnknownType  = errors.New("unknown message type")
	ErrMissingField = errors.New("missing field")
)

// Event converts an inbound message into an engine event.
func (m Message) Event() (engine.Event, error) {
	kind, ok := engine.ParseEventKind(m.Type)
	if !ok {
		return engine.Event{}, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}

	switch kind {
	case engine.EventDrawStart:
		return engine.DrawStart(), nil
	case engine.EventDrawEnd:
		return engine.DrawEnd(), nil
	case engine.EventSelectToggle:
		return engine.SelectToggle(), nil
	case engine.EventSelectCommit:
		return engine.SelectCommit(), nil
	case engine.EventVoiceTranscript:
		return engine.VoiceTranscript(m.Text), nil
	case engine.EventMenuAction:
		if m.Text == "" {
			return engine.Event{}, fmt.Errorf("%s: %w text", m.Type, ErrMissingField)
		}
		return engine.MenuAction(m.Text), nil
	case engine.EventDrawUpdate:
		if m.Pos == nil {
			return engine.Event{}, fmt.Errorf("%s: %w pos", m.Type, ErrMissingField)
		}
		return engine.DrawUpdate(*m.Pos), nil
	case engine.EventPointerRay, engine.EventGazeRay:
		if m.Ray == nil || m.Ray.Dir.IsZero() {
			return engine.Event{}, fmt.Errorf("%s: %w ray", m.Type, ErrMissingField)
		}
		r := geom.NewRay(m.Ray.Origin, m.Ray.Dir)
		if kind == engine.EventGazeRay {
			return engine.GazeRay(r), nil
		}
		return engine.PointerRay(r), nil
	case engine.EventTipColor:
		c, err := colorful.Hex(m.Color)
		if err != nil {
			return engine.Event{}, fmt.Errorf("%s: %w", m.Type, err)
		}
		r, g, b := c.RGB255()
		return engine.TipColor(color.NRGBA{R: r, G: g, B: b, A: 255}), nil
	case engine.EventActivateWorkflow:
		wf, ok := command.ParseKind(m.Workflow)
		if !ok {
			return engine.Event{}, fmt.Errorf("%s: unknown workflow %q", m.Type, m.Workflow)
		}
		return engine.ActivateWorkflow(wf), nil
	case engine.EventMoveSurface:
		if m.Surface == "" || m.Pos == nil {
			return engine.Event{}, fmt.Errorf("%s: %w surface or pos", m.Type, ErrMissingField)
		}
		return engine.MoveSurface(m.Surface, *m.Pos), nil
	}
	return engine.Event{}, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
}

// RenderMessage describes a stroke to draw or redraw.
func RenderMessage(id string, points []geom.Vec3, c color.NRGBA) Message {
	return Message{Type: TypeRender, ID: id, Points: points, Color: hexColor(c)}
}

// HideMessage removes a stroke from peers' scenes.
func HideMessage(id string) Message {
	return Message{Type: TypeHide, ID: id}
}

func hexColor(c color.NRGBA) string {
	cf, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return cf.Hex()
}
