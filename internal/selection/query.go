package selection

import (
	"VRBoard/internal/geom"
	"VRBoard/internal/state"

	"github.com/chewxy/math32"
)

// StrokeDistance is the smallest segment-to-ray distance over the stroke's
// world-space polyline. Strokes that are not live or have fewer than two
// points are infinitely far away.
func StrokeDistance(ray geom.Ray, s *state.Stroke, maxLen float32) float32 {
	best := math32.Inf(1)
	if s == nil || !s.Live() || s.Len() < 2 {
		return best
	}
	pts := s.WorldPoints()
	for i := 1; i < len(pts); i++ {
		if d := geom.DistanceSegmentToRay(pts[i-1], pts[i], ray, maxLen); d < best {
			best = d
		}
	}
	return best
}

// Nearest returns the stroke closest to the ray, provided it is closer than radius.
func Nearest(ray geom.Ray, strokes []*state.Stroke, radius, maxLen float32) (*state.Stroke, float32, bool) {
	var best *state.Stroke
	bestDist := math32.Inf(1)
	for _, s := range strokes {
		if d := StrokeDistance(ray, s, maxLen); d < bestDist {
			best, bestDist = s, d
		}
	}
	if best == nil || bestDist >= radius {
		return nil, bestDist, false
	}
	return best, bestDist, true
}
