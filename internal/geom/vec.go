package geom

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Epsilon is the length below which a vector or segment is treated as degenerate.
const Epsilon float32 = 1e-6

// Vec3 is a point or direction in 3D space (meters).
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// V3 returns a new Vec3.
func V3(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

var (
	Zero    = Vec3{}
	Up      = Vec3{Y: 1}
	Right   = Vec3{X: 1}
	Forward = Vec3{Z: 1}
)

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(k float32) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSquared() float32 { return v.Dot(v) }

func (v Vec3) Length() float32 { return math32.Sqrt(v.Dot(v)) }

// Normal returns the unit vector in the direction of v, or Zero when v is degenerate.
func (v Vec3) Normal() Vec3 {
	l := v.Length()
	if l < Epsilon {
		return Zero
	}
	return v.Scale(1 / l)
}

func (v Vec3) DistanceTo(o Vec3) float32 { return v.Sub(o).Length() }

// Lerp interpolates between v and o by t.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 { return v.Add(o.Sub(v).Scale(t)) }

func (v Vec3) IsZero() bool { return v.LengthSquared() < Epsilon*Epsilon }

// ApproxEqual reports whether every component of v and o differs by at most tol.
func (v Vec3) ApproxEqual(o Vec3, tol float32) bool {
	return math32.Abs(v.X-o.X) <= tol && math32.Abs(v.Y-o.Y) <= tol && math32.Abs(v.Z-o.Z) <= tol
}

func (v Vec3) String() string { return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z) }

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin Vec3 `json:"origin"`
	Dir    Vec3 `json:"dir"`
}

// NewRay normalizes dir.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir.Normal()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 { return r.Origin.Add(r.Dir.Scale(t)) }

// Plane is an infinite plane through Point with unit Normal.
type Plane struct {
	Point  Vec3
	Normal Vec3
}

// Distance is the signed distance of p from the plane.
func (p Plane) Distance(v Vec3) float32 { return v.Sub(p.Point).Dot(p.Normal) }

// Project returns the orthogonal projection of v onto the plane.
func (p Plane) Project(v Vec3) Vec3 { return v.Sub(p.Normal.Scale(p.Distance(v))) }

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min, Max Vec3
}

// BoundsOf returns the bounding box of points. The box is empty (Min > Max) for no points.
func BoundsOf(points []Vec3) Box3 {
	inf := math32.Inf(1)
	b := Box3{Min: V3(inf, inf, inf), Max: V3(-inf, -inf, -inf)}
	for _, p := range points {
		b.Min = V3(math32.Min(b.Min.X, p.X), math32.Min(b.Min.Y, p.Y), math32.Min(b.Min.Z, p.Z))
		b.Max = V3(math32.Max(b.Max.X, p.X), math32.Max(b.Max.Y, p.Y), math32.Max(b.Max.Z, p.Z))
	}
	return b
}

func (b Box3) Size() Vec3 { return b.Max.Sub(b.Min) }

// Centroid is the arithmetic mean of points.
func Centroid(points []Vec3) Vec3 {
	if len(points) == 0 {
		return Zero
	}
	var sum Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float32(len(points)))
}

// Clone returns a copy of points that shares no storage with the input.
func Clone(points []Vec3) []Vec3 {
	if points == nil {
		return nil
	}
	out := make([]Vec3, len(points))
	copy(out, points)
	return out
}

// Perpendicular returns a unit vector perpendicular to dir, preferring one
// that also lies in the plane with the given normal. Falls back to world up
// and then world right when the preferred axis is parallel to dir.
func Perpendicular(dir, normal Vec3) Vec3 {
	for _, axis := range []Vec3{normal, Up, Right} {
		if axis.IsZero() {
			continue
		}
		p := dir.Cross(axis)
		if p.Length() > 1e-4 {
			return p.Normal()
		}
	}
	return Up
}

// NewellNormal estimates the normal of the plane best fitting a closed loop of points.
func NewellNormal(points []Vec3) Vec3 {
	var n Vec3
	for i := range points {
		c := points[i]
		nx := points[(i+1)%len(points)]
		n.X += (c.Y - nx.Y) * (c.Z + nx.Z)
		n.Y += (c.Z - nx.Z) * (c.X + nx.X)
		n.Z += (c.X - nx.X) * (c.Y + nx.Y)
	}
	return n.Normal()
}
