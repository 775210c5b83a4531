package state

import (
	"log"
	"sync"

	"VRBoard/internal/geom"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// Surface is a tagged, bounded drawing plane. Its local frame has X along
// the surface's U axis, Y along V and Z along the outward normal.
type Surface struct {
	ID         string
	Tag        string
	HalfWidth  float32
	HalfHeight float32

	mu     sync.RWMutex
	origin geom.Vec3
	u, v   geom.Vec3
	normal geom.Vec3
	rev    uint64
}

// NewSurface creates a surface centered on origin facing normal. up hints
// the direction of the local Y axis; it is re-orthogonalized against normal.
func NewSurface(tag string, origin, normal, up geom.Vec3, halfWidth, halfHeight float32) *Surface {
	s := &Surface{
		ID:         uuid.NewString(),
		Tag:        tag,
		HalfWidth:  halfWidth,
		HalfHeight: halfHeight,
	}
	s.SetPose(origin, normal, up)
	return s
}

// SetPose moves and reorients the surface. Strokes stored in its frame follow it.
func (s *Surface) SetPose(origin, normal, up geom.Vec3) {
	n := normal.Normal()
	if n.IsZero() {
		n = geom.Forward
	}
	u := up.Cross(n).Normal()
	if u.IsZero() {
		u = geom.Perpendicular(n, geom.Zero)
	}
	v := n.Cross(u)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.origin, s.u, s.v, s.normal = origin, u, v, n
	s.rev = nextRevision()
}

// Move translates the surface keeping its orientation.
func (s *Surface) Move(origin geom.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origin = origin
	s.rev = nextRevision()
}

func (s *Surface) Origin() geom.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin
}

func (s *Surface) Normal() geom.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.normal
}

func (s *Surface) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *Surface) Plane() geom.Plane {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geom.Plane{Point: s.origin, Normal: s.normal}
}

// ToWorld converts a point in the surface frame to world space.
func (s *Surface) ToWorld(p geom.Vec3) geom.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin.Add(s.u.Scale(p.X)).Add(s.v.Scale(p.Y)).Add(s.normal.Scale(p.Z))
}

// ToLocal converts a world point to the surface frame.
func (s *Surface) ToLocal(p geom.Vec3) geom.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := p.Sub(s.origin)
	return geom.V3(d.Dot(s.u), d.Dot(s.v), d.Dot(s.normal))
}

// Contains reports whether the projection of p lies within the surface bounds.
func (s *Surface) Contains(p geom.Vec3) bool {
	l := s.ToLocal(p)
	return math32.Abs(l.X) <= s.HalfWidth && math32.Abs(l.Y) <= s.HalfHeight
}

// Contact is where a tip touches a surface.
type Contact struct {
	Surface *Surface
	Point   geom.Vec3 // tip projected onto the plane, world space
	Normal  geom.Vec3
	Depth   float32 // signed distance of the tip from the plane
}

// SurfaceSet holds the drawable surfaces of a scene and answers proximity
// queries for the pencil.
type SurfaceSet struct {
	// ContactRange is how far from a plane (either side) the tip still counts as touching.
	ContactRange float32

	surfaces []*Surface
	mu       sync.RWMutex
}

func NewSurfaceSet(contactRange float32) *SurfaceSet {
	return &SurfaceSet{ContactRange: contactRange}
}

func (ss *SurfaceSet) Add(s *Surface) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.surfaces = append(ss.surfaces, s)
	log.Printf("[SURFACE] Added %s (%s)", s.ID, s.Tag)
}

func (ss *SurfaceSet) Get(id string) (*Surface, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	for _, s := range ss.surfaces {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Find returns the first surface with the given tag.
func (ss *SurfaceSet) Find(tag string) (*Surface, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	for _, s := range ss.surfaces {
		if s.Tag == tag {
			return s, true
		}
	}
	return nil, false
}

func (ss *SurfaceSet) All() []*Surface {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	out := make([]*Surface, len(ss.surfaces))
	copy(out, ss.surfaces)
	return out
}

// Contact returns the closest surface whose plane is within ContactRange of
// tip and whose bounds contain the tip's projection.
func (ss *SurfaceSet) Contact(tip geom.Vec3) (Contact, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var best Contact
	found := false
	for _, s := range ss.surfaces {
		pl := s.Plane()
		depth := pl.Distance(tip)
		if math32.Abs(depth) > ss.ContactRange || !s.Contains(tip) {
			continue
		}
		if !found || math32.Abs(depth) < math32.Abs(best.Depth) {
			best = Contact{Surface: s, Point: pl.Project(tip), Normal: pl.Normal, Depth: depth}
			found = true
		}
	}
	return best, found
}
