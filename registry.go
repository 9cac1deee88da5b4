package rebound

import (
	"github.com/rebound-engine/rebound/dynamics"
)

// bucket partitions registered shapes for pair generation. Static shapes
// never pair with each other, so keeping them apart from dynamics makes the
// invariant structural. Within each mobility class shapes are keyed by
// variant so the narrow phase can reason about the pair kinds up front.
type bucket int

const (
	bucketDynamicSphere bucket = iota
	bucketDynamicPlane
	bucketStaticSphere
	bucketStaticPlane

	bucketCount
)

func bucketFor(s *dynamics.Shape) bucket {
	if s.Static() {
		if s.Kind == dynamics.KindPlane {
			return bucketStaticPlane
		}
		return bucketStaticSphere
	}
	if s.Kind == dynamics.KindPlane {
		return bucketDynamicPlane
	}
	return bucketDynamicSphere
}

// slot is one arena cell. The generation is bumped on every release so
// stale handles are detectable; generation 0 is reserved for the invalid
// zero handle.
type slot struct {
	shape      *dynamics.Shape
	generation uint32
	bucket     bucket
}

// SpatialRegistry stores every registered shape in a generational arena and
// partitions them into static/dynamic buckets keyed by variant. Add and
// remove are O(1) amortized; iteration follows slot order, which is stable
// for the duration of a step. Bucket membership is decided once, at
// registration: a host that attaches or detaches a body afterwards must
// re-register the shape.
type SpatialRegistry struct {
	slots []slot
	free  []uint32

	// buckets hold handles in registration order. Entries go stale when a
	// slot is released; iteration compacts them away lazily.
	buckets [bucketCount][]dynamics.Handle
}

// NewSpatialRegistry returns an empty registry.
func NewSpatialRegistry() *SpatialRegistry {
	return &SpatialRegistry{}
}

// Add registers a shape, assigns it a handle, and files it into its bucket.
// Re-adding an already registered shape returns its existing handle.
func (r *SpatialRegistry) Add(s *dynamics.Shape) dynamics.Handle {
	if h := s.Handle(); h.Valid() && r.Resolve(h) == s {
		return h
	}

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}

	b := bucketFor(s)
	r.slots[idx].shape = s
	r.slots[idx].generation++
	r.slots[idx].bucket = b

	h := dynamics.Handle{Index: idx, Generation: r.slots[idx].generation}
	s.SetHandle(h)
	r.buckets[b] = append(r.buckets[b], h)
	return h
}

// Remove releases a shape's slot. Removing an unregistered shape or a stale
// handle is a no-op. The bucket entry is left stale and skipped during
// iteration.
func (r *SpatialRegistry) Remove(s *dynamics.Shape) {
	h := s.Handle()
	if r.Resolve(h) != s {
		return
	}

	r.slots[h.Index].shape = nil
	r.slots[h.Index].generation++
	r.free = append(r.free, h.Index)
	s.SetHandle(dynamics.Handle{})
}

// Resolve maps a handle back to its shape, or nil for stale, zero, or
// out-of-range handles.
func (r *SpatialRegistry) Resolve(h dynamics.Handle) *dynamics.Shape {
	if !h.Valid() || int(h.Index) >= len(r.slots) {
		return nil
	}
	if r.slots[h.Index].generation != h.Generation {
		return nil
	}
	return r.slots[h.Index].shape
}

// Len returns the number of live registered shapes.
func (r *SpatialRegistry) Len() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].shape != nil {
			n++
		}
	}
	return n
}

// compact drops stale handles from a bucket and returns the live entries.
func (r *SpatialRegistry) compact(b bucket) []dynamics.Handle {
	live := r.buckets[b][:0]
	for _, h := range r.buckets[b] {
		if r.Resolve(h) != nil {
			live = append(live, h)
		}
	}
	r.buckets[b] = live
	return live
}

// DynamicShapes returns the live dynamic shapes in registration order,
// spheres before planes. The order is the documented pair-iteration order
// and must stay fixed for determinism.
func (r *SpatialRegistry) DynamicShapes() []*dynamics.Shape {
	return r.collect(bucketDynamicSphere, bucketDynamicPlane)
}

// StaticShapes returns the live static shapes in registration order,
// spheres before planes.
func (r *SpatialRegistry) StaticShapes() []*dynamics.Shape {
	return r.collect(bucketStaticSphere, bucketStaticPlane)
}

func (r *SpatialRegistry) collect(buckets ...bucket) []*dynamics.Shape {
	var out []*dynamics.Shape
	for _, b := range buckets {
		for _, h := range r.compact(b) {
			out = append(out, r.Resolve(h))
		}
	}
	return out
}
