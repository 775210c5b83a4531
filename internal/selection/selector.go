// Package selection finds the stroke a pointer ray or gaze ray is aimed at
// and keeps that choice stable from frame to frame.
package selection

import (
	"image/color"
	"log"
	"time"

	"VRBoard/internal/geom"
	"VRBoard/internal/state"
)

// Policy is the interaction model a selector follows.
type Policy int

const (
	// PolicyRay previews strokes under a handheld pointer; Commit promotes
	// the preview to the selection and freezes hovering.
	PolicyRay Policy = iota
	// PolicyGaze treats the hovered stroke as the target at all times.
	PolicyGaze
)

func (p Policy) String() string {
	if p == PolicyGaze {
		return "gaze"
	}
	return "ray"
}

// Config tunes the selector. Distances are meters.
type Config struct {
	SelectionRadius float32
	MaxRayLength    float32
	// SwitchLockTime is how long a new hover is kept before it can be
	// dropped for leaving SelectionRadius.
	SwitchLockTime time.Duration
	// SwitchThreshold is how much closer a rival stroke must be to steal hover.
	SwitchThreshold float32
	// DeselectDelay is the gaze grace window after the ray loses its stroke.
	DeselectDelay time.Duration

	HoverTint   color.NRGBA
	HoverBlend  float64
	SelectColor color.NRGBA
}

// gazeGraceFactor widens the radius a lost gaze target must stay within.
const gazeGraceFactor = 1.5

// Source supplies the strokes that can be selected.
type Source interface {
	Live() []*state.Stroke
}

// TargetSet is the externally defined set of correct strokes for a task.
type TargetSet interface {
	IsTarget(strokeID string) bool
}

// Selector tracks at most one hovered and one selected stroke.
type Selector struct {
	cfg    Config
	policy Policy
	source Source

	hovered    *state.Stroke
	selected   *state.Stroke
	lastSwitch time.Time
	lastSeen   time.Time

	// Targets backs IsTarget; nil means no task is running.
	Targets TargetSet
	// OnTargetCheck observes every IsTarget query.
	OnTargetCheck func(s *state.Stroke, correct bool)
}

func NewSelector(cfg Config, policy Policy, source Source) *Selector {
	return &Selector{cfg: cfg, policy: policy, source: source}
}

func (s *Selector) Policy() Policy { return s.policy }

func (s *Selector) Config() Config { return s.cfg }

func (s *Selector) Hovered() *state.Stroke { return s.hovered }

func (s *Selector) Selected() *state.Stroke { return s.selected }

// Target is the stroke commands act on: the selection for the ray policy,
// the hovered stroke for gaze.
func (s *Selector) Target() *state.Stroke {
	s.validate()
	if s.policy == PolicyGaze {
		return s.hovered
	}
	return s.selected
}

// Update runs one frame of hover tracking for ray at time now.
func (s *Selector) Update(ray geom.Ray, now time.Time) {
	s.validate()
	if s.policy == PolicyRay && s.selected != nil {
		return
	}

	cand, candDist, ok := Nearest(ray, s.source.Live(), s.cfg.SelectionRadius, s.cfg.MaxRayLength)
	if s.policy == PolicyGaze {
		s.updateGaze(ray, cand, ok, now)
		return
	}
	s.updateRay(ray, cand, candDist, ok, now)
}

func (s *Selector) updateRay(ray geom.Ray, cand *state.Stroke, candDist float32, ok bool, now time.Time) {
	if s.hovered == nil {
		if ok {
			s.setHover(cand, now)
		}
		return
	}
	if ok && cand == s.hovered {
		return
	}

	cur := StrokeDistance(ray, s.hovered, s.cfg.MaxRayLength)
	locked := now.Sub(s.lastSwitch) < s.cfg.SwitchLockTime
	lost := !locked && cur > s.cfg.SelectionRadius

	switch {
	case !ok:
		if lost {
			s.setHover(nil, now)
		}
	case lost || cur-candDist > s.cfg.SwitchThreshold:
		s.setHover(cand, now)
	}
}

func (s *Selector) updateGaze(ray geom.Ray, cand *state.Stroke, ok bool, now time.Time) {
	if ok {
		if cand != s.hovered {
			s.setHover(cand, now)
		}
		s.lastSeen = now
		return
	}
	if s.hovered == nil {
		return
	}
	cur := StrokeDistance(ray, s.hovered, s.cfg.MaxRayLength)
	if now.Sub(s.lastSeen) <= s.cfg.DeselectDelay && cur <= gazeGraceFactor*s.cfg.SelectionRadius {
		return
	}
	s.setHover(nil, now)
}

// Commit promotes the hovered stroke to the selection. For the gaze policy
// the hovered stroke already is the target and is returned unchanged.
func (s *Selector) Commit() (*state.Stroke, bool) {
	s.validate()
	if s.hovered == nil {
		return nil, false
	}
	if s.policy == PolicyGaze {
		return s.hovered, true
	}
	if s.selected != nil && s.selected != s.hovered {
		s.selected.ClearHighlight()
	}
	s.selected = s.hovered
	s.hovered = nil
	s.selected.SetHighlight(s.cfg.SelectColor)
	log.Printf("[SELECT] Committed stroke %s", s.selected.ID)
	return s.selected, true
}

// Clear drops hover and selection and restores the strokes' true colors.
func (s *Selector) Clear() {
	if s.hovered != nil {
		s.hovered.ClearHighlight()
		s.hovered = nil
	}
	if s.selected != nil {
		s.selected.ClearHighlight()
		s.selected = nil
	}
}

// Deactivate clears hover and selection and resets the hysteresis clocks.
func (s *Selector) Deactivate() {
	s.Clear()
	s.lastSwitch = time.Time{}
	s.lastSeen = time.Time{}
}

// Refresh re-applies the highlight of the current hover or selection, for
// use after the stroke's true color changed.
func (s *Selector) Refresh() {
	if s.selected != nil && s.selected.Live() {
		s.selected.SetHighlight(s.cfg.SelectColor)
	}
	if s.hovered != nil && s.hovered.Live() {
		s.hovered.SetHighlight(s.hoverColor(s.hovered))
	}
}

// IsTarget reports whether stroke belongs to the task's target set. Without
// a target set every stroke counts as correct.
func (s *Selector) IsTarget(stroke *state.Stroke) bool {
	correct := true
	if s.Targets != nil {
		correct = stroke != nil && s.Targets.IsTarget(stroke.ID)
	}
	if s.OnTargetCheck != nil {
		s.OnTargetCheck(stroke, correct)
	}
	return correct
}

func (s *Selector) setHover(next *state.Stroke, now time.Time) {
	prev := s.hovered
	if prev != nil && prev != s.selected {
		prev.ClearHighlight()
	}
	s.hovered = next
	s.lastSwitch = now
	s.lastSeen = now
	if next != nil {
		next.SetHighlight(s.hoverColor(next))
	}
}

// validate drops references to strokes that are no longer live.
func (s *Selector) validate() {
	if s.hovered != nil && !s.hovered.Live() {
		s.hovered.ClearHighlight()
		s.hovered = nil
	}
	if s.selected != nil && !s.selected.Live() {
		s.selected.ClearHighlight()
		s.selected = nil
	}
}
