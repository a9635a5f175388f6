// Package stock implements the geometry cleaning and topology engine for
// 2-D building-footprint polygons. It simplifies each footprint to a minimum
// coordinate spacing while keeping shared boundaries between touching
// footprints bit-identical, repairs invalid hole/exterior relationships,
// cascades deletions through hole-nested footprints, groups the survivors
// into built islands, and can stitch a polygon with holes into a single
// traversable boundary loop for downstream surface emission.
//
// The engine is synchronous and purely in-memory. All file I/O lives in the
// thin GeoJSON adapter and in the caller.
package stock

import (
	"github.com/paulmach/orb"
)

// DefaultTolerance is the minimum allowed distance between consecutive
// coordinates after simplification. EnergyPlus-style surface emitters
// require at least 0.1 length units.
const DefaultTolerance = 0.1

// Footprint is one building or shading polygon with identity and
// passthrough attributes. Ring 0 of Polygon is the outer boundary
// (canonically clockwise, closed); any further rings are holes (canonically
// counter-clockwise, closed). The pipeline mutates Polygon in place and
// fills in the derived fields; attribute values are carried through
// untouched.
type Footprint struct {
	ID      string
	Polygon orb.Polygon
	Shading bool
	Attrs   map[string]interface{}

	// Derived by the pipeline.

	// Touching lists the ids of footprints whose boundary shares an edge
	// or point with this one. Symmetric across the collection.
	Touching []string

	// Island is the built-island identifier assigned by ComposeIslands.
	Island string

	// Exposed holds the parts of the boundary not shared with any
	// touching neighbor, as open chains. Computed by the collinear pass.
	Exposed []orb.LineString

	// Horizontal is the polygon with every collinear point removed,
	// suitable for flat (floor/roof) surface emission. Computed by the
	// collinear pass.
	Horizontal orb.Polygon
}

// Outer returns the footprint's outer boundary ring.
func (f *Footprint) Outer() orb.Ring {
	if len(f.Polygon) == 0 {
		return nil
	}
	return f.Polygon[0]
}

// Holes returns the footprint's hole rings, which may be empty.
func (f *Footprint) Holes() []orb.Ring {
	if len(f.Polygon) < 2 {
		return nil
	}
	return f.Polygon[1:]
}

// HasHoles reports whether the footprint has any hole rings.
func (f *Footprint) HasHoles() bool {
	return len(f.Polygon) > 1
}

// DropReason explains why the engine removed a footprint.
type DropReason int

const (
	// DropDegenerate means simplification or repair reduced a ring below
	// three distinct vertices.
	DropDegenerate DropReason = iota

	// DropHoleCascade means the footprint was nested inside a hole that
	// was removed or shrank away from it.
	DropHoleCascade
)

func (r DropReason) String() string {
	switch r {
	case DropDegenerate:
		return "degenerate"
	case DropHoleCascade:
		return "hole-cascade"
	}
	return "unknown"
}

// Drop records one footprint removal for the audit report.
type Drop struct {
	ID     string
	Reason DropReason
}

// Stock is the footprint arena: an insertion-ordered, id-addressed
// collection. All pipeline passes walk footprints in insertion order of
// their ids so that propagation and cascade outcomes are reproducible run
// to run. Derived relations (touching, hole containment, islands) are kept
// in separate maps keyed by the same ids, never duplicated into the
// geometry.
type Stock struct {
	ids     []string
	byID    map[string]*Footprint
	dropped []Drop

	// holeContains maps a footprint id to, per hole ring, the ids of
	// footprints whose boundary lies entirely inside that hole. Rebuilt by
	// the orchestrator whenever topology may have changed.
	holeContains map[string][][]string
}

// NewStock returns an empty footprint collection.
func NewStock() *Stock {
	return &Stock{byID: make(map[string]*Footprint)}
}

// Add inserts a footprint. Insertion order determines processing order for
// every pipeline pass. Re-adding an existing id replaces the footprint but
// keeps its original position.
func (s *Stock) Add(f *Footprint) {
	if _, ok := s.byID[f.ID]; !ok {
		s.ids = append(s.ids, f.ID)
	}
	s.byID[f.ID] = f
}

// Get returns the footprint with the given id, or false if it does not
// exist or has been dropped.
func (s *Stock) Get(id string) (*Footprint, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// IDs returns the ids of all surviving footprints in insertion order.
func (s *Stock) IDs() []string {
	out := make([]string, 0, len(s.byID))
	for _, id := range s.ids {
		if _, ok := s.byID[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of surviving footprints.
func (s *Stock) Len() int {
	return len(s.byID)
}

// Drop removes a footprint and records the reason. Dropping an unknown or
// already-dropped id is a no-op. Cascading through hole containment is the
// orchestrator's job, not Drop's.
func (s *Stock) Drop(id string, reason DropReason) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	delete(s.holeContains, id)
	s.dropped = append(s.dropped, Drop{ID: id, Reason: reason})
}

// Dropped returns the removal log in drop order.
func (s *Stock) Dropped() []Drop {
	return s.dropped
}

// Report summarizes one pipeline run for auditability.
type Report struct {
	// Input and surviving footprint counts.
	Input     int
	Surviving int

	// Removal counts by reason.
	Degenerate  int
	HoleCascade int

	// Islands maps island id to the number of footprints assigned to it.
	Islands map[string]int

	// ModalIsland is the island containing the most non-shading
	// footprints, with its count. Empty when no islands were composed.
	ModalIsland      string
	ModalIslandCount int
}
