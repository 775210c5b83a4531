package selection

import (
	"image/color"

	"VRBoard/internal/state"

	"github.com/lucasb-eyer/go-colorful"
)

// hoverColor tints the stroke's true color toward the hover tint in Lab
// space so dark and light strokes both read as highlighted.
func (s *Selector) hoverColor(stroke *state.Stroke) color.NRGBA {
	return Blend(stroke.Color(), s.cfg.HoverTint, s.cfg.HoverBlend)
}

// Blend mixes base toward tint by t in [0,1], keeping base's alpha.
func Blend(base, tint color.NRGBA, t float64) color.NRGBA {
	b, ok := colorful.MakeColor(base)
	if !ok {
		return tint
	}
	tc, ok := colorful.MakeColor(tint)
	if !ok {
		return base
	}
	r, g, bl := b.BlendLab(tc, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: base.A}
}
