package geom

import (
	"sort"

	"github.com/chewxy/math32"
)

// Circle detection thresholds, all relative to the mean radius.
const (
	MinCirclePoints    = 8
	circleClosureRatio = 0.4
	circleMinAspect    = 0.5
	circleMaxAspect    = 2.0
	circleMaxDeviation = 0.3
)

// DetectCircle reports whether points look like an attempt at drawing a
// circle: closed, roughly square in its two largest extents, and with a
// regular radius. It returns the centroid and mean radius.
func DetectCircle(points []Vec3) (center Vec3, radius float32, ok bool) {
	if len(points) < MinCirclePoints {
		return Zero, 0, false
	}

	center = Centroid(points)
	radii := make([]float32, len(points))
	for i, p := range points {
		radii[i] = p.DistanceTo(center)
		radius += radii[i]
	}
	radius /= float32(len(points))
	if radius < Epsilon {
		return center, radius, false
	}

	if points[0].DistanceTo(points[len(points)-1]) > circleClosureRatio*radius {
		return center, radius, false
	}

	size := BoundsOf(points).Size()
	ext := []float32{size.X, size.Y, size.Z}
	sort.Slice(ext, func(i, j int) bool { return ext[i] > ext[j] })
	if ext[0] < Epsilon {
		return center, radius, false
	}
	aspect := ext[1] / ext[0]
	if aspect < circleMinAspect || aspect > circleMaxAspect {
		return center, radius, false
	}

	var variance float32
	for _, r := range radii {
		variance += (r - radius) * (r - radius)
	}
	variance /= float32(len(radii))
	if math32.Sqrt(variance) > circleMaxDeviation*radius {
		return center, radius, false
	}

	return center, radius, true
}

// GenerateCircle returns resolution+1 points tracing a closed circle around
// center in the plane with the given normal.
func GenerateCircle(center Vec3, radius float32, normal Vec3, resolution int) []Vec3 {
	if resolution < 3 {
		resolution = 3
	}
	n := normal.Normal()
	if n.IsZero() {
		n = Forward
	}
	ref := Up
	if math32.Abs(n.Dot(ref)) > 0.99 {
		ref = Right
	}
	t1 := n.Cross(ref).Normal()
	t2 := n.Cross(t1)

	points := make([]Vec3, resolution+1)
	for i := 0; i <= resolution; i++ {
		angle := 2 * math32.Pi * float32(i) / float32(resolution)
		offset := t1.Scale(math32.Cos(angle)).Add(t2.Scale(math32.Sin(angle)))
		points[i] = center.Add(offset.Scale(radius))
	}
	return points
}

// GenerateQuadraticCurve samples a quadratic Bezier from start to end whose
// control point sits apexHeight along apexDir from the chord midpoint.
// Both endpoints are included in the resolution samples.
func GenerateQuadraticCurve(start, end, apexDir Vec3, apexHeight float32, resolution int) []Vec3 {
	if resolution < 2 {
		resolution = 2
	}
	control := start.Lerp(end, 0.5).Add(apexDir.Scale(apexHeight))

	points := make([]Vec3, resolution)
	for i := 0; i < resolution; i++ {
		t := float32(i) / float32(resolution-1)
		mt := 1 - t
		points[i] = start.Scale(mt * mt).Add(control.Scale(2 * mt * t)).Add(end.Scale(t * t))
	}
	return points
}
