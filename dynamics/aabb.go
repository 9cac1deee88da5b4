package dynamics

import "github.com/go-gl/mathgl/mgl64"

// AABB is a world-space axis-aligned bounding box, refreshed per step by
// Shape.ComputeAABB and used as a cheap pair pre-filter.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Overlaps reports whether the boxes intersect. Shared faces count as an
// overlap so exact-touch contacts are not filtered out.
func (a AABB) Overlaps(other AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] < other.Min[i] || other.Max[i] < a.Min[i] {
			return false
		}
	}
	return true
}
