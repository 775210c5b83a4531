package geom

import "github.com/chewxy/math32"

// DistancePointToRay returns the distance from point to its projection on the
// ray, or +Inf when the point lies behind the origin or past maxLen.
func DistancePointToRay(point Vec3, ray Ray, maxLen float32) float32 {
	t := point.Sub(ray.Origin).Dot(ray.Dir)
	if t < 0 || t > maxLen {
		return math32.Inf(1)
	}
	return point.DistanceTo(ray.At(t))
}

// DistanceSegmentToRay approximates the closest distance between the segment
// a-b and the ray by solving the two-line closest-point system and clamping
// both parameters to their valid ranges, [0, maxLen] for the ray and
// [0, |b-a|] for the segment.
func DistanceSegmentToRay(a, b Vec3, ray Ray, maxLen float32) float32 {
	seg := b.Sub(a)
	segLen := seg.Length()
	if segLen < Epsilon {
		return DistancePointToRay(a, ray, maxLen)
	}
	u := seg.Scale(1 / segLen)
	v := ray.Dir

	w := ray.Origin.Sub(a)
	bb := v.Dot(u)
	d := v.Dot(w)
	e := u.Dot(w)
	denom := 1 - bb*bb

	var s, t float32
	if denom < Epsilon {
		// parallel: anchor on the segment midpoint
		s = a.Add(seg.Scale(0.5)).Sub(ray.Origin).Dot(v)
		s = clamp(s, 0, maxLen)
		t = ray.At(s).Sub(a).Dot(u)
	} else {
		s = (bb*e - d) / denom
		t = (e - bb*d) / denom
		s = clamp(s, 0, maxLen)
	}
	t = clamp(t, 0, segLen)

	return ray.At(s).DistanceTo(a.Add(u.Scale(t)))
}

// PerpendicularDistance returns the distance from p to the segment a-b.
func PerpendicularDistance(p, a, b Vec3) float32 {
	ab := b.Sub(a)
	l2 := ab.LengthSquared()
	if l2 < Epsilon*Epsilon {
		return p.DistanceTo(a)
	}
	t := clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return p.DistanceTo(a.Add(ab.Scale(t)))
}

// Deviation describes the point of a polyline farthest from its chord.
type Deviation struct {
	Index     int
	Distance  float32
	Direction Vec3 // unit vector from the chord toward the point; Zero when Distance is ~0
}

// MaxDeviation finds the interior point of points with the largest
// perpendicular distance from the chord joining the first and last point.
func MaxDeviation(points []Vec3) Deviation {
	dev := Deviation{Index: -1}
	if len(points) < 3 {
		return dev
	}
	a, b := points[0], points[len(points)-1]
	ab := b.Sub(a)
	l2 := ab.LengthSquared()
	for i := 1; i < len(points)-1; i++ {
		d := PerpendicularDistance(points[i], a, b)
		if d > dev.Distance || dev.Index < 0 {
			dev.Index = i
			dev.Distance = d
		}
	}
	if dev.Index >= 0 && l2 > Epsilon*Epsilon {
		p := points[dev.Index]
		t := clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
		dev.Direction = p.Sub(a.Add(ab.Scale(t))).Normal()
	}
	return dev
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
