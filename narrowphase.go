package rebound

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/rebound-engine/rebound/dynamics"
	"github.com/rebound-engine/rebound/vmath"
)

// Contact is the ephemeral result of one narrow-phase hit. It lives for a
// single response call; only the touching-set membership it causes persists
// across steps.
type Contact struct {
	A, B *dynamics.Shape

	// Normal is the unit contact normal pointing from A toward B.
	Normal mgl64.Vec3
	// Penetration is the overlap depth along the normal, >= 0.
	Penetration float64
	// Point is the world-space contact point.
	Point mgl64.Vec3
}

// collideFunc tests one ordered pair of shape kinds. A nil table entry
// means the combination produces no finite contact and the pair is skipped.
type collideFunc func(a, b *dynamics.Shape) (Contact, bool)

// collideTable is the collision matrix, indexed by the two shape kinds.
// Keeping the matrix explicit avoids double-dispatch through the shapes
// themselves. Plane-plane has no entry: two infinite half-spaces never
// yield a meaningful contact.
var collideTable = [dynamics.KindCount][dynamics.KindCount]collideFunc{
	dynamics.KindSphere: {
		dynamics.KindSphere: collideSphereSphere,
		dynamics.KindPlane:  collideSpherePlane,
	},
	dynamics.KindPlane: {
		dynamics.KindSphere: collidePlaneSphere,
	},
}

// zeroDistanceNormal is the fallback contact normal for spheres with
// coincident centers, where no direction can be derived.
var zeroDistanceNormal = mgl64.Vec3{1, 0, 0}

// collideSphereSphere reports a contact when the center distance does not
// exceed the radius sum. The contact point sits on A's surface along the
// normal.
func collideSphereSphere(a, b *dynamics.Shape) (Contact, bool) {
	posA := a.WorldPosition()
	posB := b.WorldPosition()

	delta := posB.Sub(posA)
	distSq := delta.Dot(delta)
	radiusSum := a.Radius + b.Radius
	if distSq > radiusSum*radiusSum {
		return Contact{}, false
	}

	dist := math.Sqrt(distSq)
	normal := vmath.SafeNormalize(delta, zeroDistanceNormal)
	penetration := radiusSum - dist

	return Contact{
		A:           a,
		B:           b,
		Normal:      normal,
		Penetration: penetration,
		Point:       posA.Add(normal.Mul(a.Radius - penetration)),
	}, true
}

// collideSpherePlane intersects a sphere with an infinite plane. The test
// is two-sided: the working up axis is flipped toward the sphere's side, so
// the response normal always drives the sphere away from the plane.
func collideSpherePlane(sphere, plane *dynamics.Shape) (Contact, bool) {
	spherePos := sphere.WorldPosition()
	up := plane.WorldUp()

	dist := spherePos.Dot(up) - plane.WorldPosition().Dot(up)
	if math.Abs(dist) >= sphere.Radius {
		return Contact{}, false
	}

	if dist < 0 {
		up = up.Mul(-1)
		dist = -dist
	}
	penetration := sphere.Radius - dist

	return Contact{
		A:           sphere,
		B:           plane,
		Normal:      up.Mul(-1),
		Penetration: penetration,
		Point:       spherePos.Sub(up.Mul(penetration)),
	}, true
}

// collidePlaneSphere delegates by swapping arguments. The returned contact
// keeps the sphere as A so the normal convention (A moved away) holds.
func collidePlaneSphere(plane, sphere *dynamics.Shape) (Contact, bool) {
	return collideSpherePlane(sphere, plane)
}

// testPair runs the narrow phase for one candidate pair and reports the
// contact, a hit flag, and whether the pair is testable at all. Untestable
// pairs (same body, no table entry) produce no separation notification.
func testPair(a, b *dynamics.Shape) (Contact, bool, bool) {
	// Compound shapes on one body never self-collide.
	if a.Body != nil && a.Body == b.Body {
		return Contact{}, false, false
	}

	fn := collideTable[a.Kind][b.Kind]
	if fn == nil {
		return Contact{}, false, false
	}

	// Cheap reject before the exact test. Plane boxes are unbounded, so
	// this only ever filters sphere-sphere pairs.
	if !a.AABB().Overlaps(b.AABB()) {
		return Contact{}, false, true
	}

	c, hit := fn(a, b)
	return c, hit, true
}
