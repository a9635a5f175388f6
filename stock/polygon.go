package stock

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

// Orientate forces the canonical ring directions: outer ring clockwise,
// hole rings counter-clockwise. The downstream surface emitter walks
// boundaries with solid material on its left, so orientation is load-bearing
// rather than cosmetic.
func Orientate(p orb.Polygon) {
	if len(p) == 0 {
		return
	}
	if p[0].Orientation() == orb.CCW {
		p[0] = orb.Ring(reversed(p[0]))
	}
	for i, hole := range p[1:] {
		if hole.Orientation() == orb.CW {
			p[i+1] = orb.Ring(reversed(hole))
		}
	}
}

// ccwRing returns the coordinates oriented counter-clockwise, reversing
// them if needed. Used to re-canonicalize repaired hole rings.
func ccwRing(coords []orb.Point) []orb.Point {
	if orb.Ring(coords).Orientation() == orb.CCW {
		return coords
	}
	return reversed(coords)
}

// dedupePolygon removes duplicated coordinates from the outer ring and
// every hole ring, preserving closure.
func dedupePolygon(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = orb.Ring(removeDuplicates(r))
	}
	return out
}

// polygonWithinTol reports whether any ring of the polygon has two
// consecutive coordinates closer together than tol. Such polygons are
// flagged for simplification.
func polygonWithinTol(p orb.Polygon, tol float64) bool {
	for _, r := range p {
		if withinTolerance(r, tol) {
			return true
		}
	}
	return false
}

// selfInconsistent reports whether any hole ring partially overlaps the
// outer boundary instead of at most sharing it. Simplification can drag a
// hole across the exterior; such polygons go to repair.
func selfInconsistent(p orb.Polygon) (bool, error) {
	if len(p) < 2 {
		return false, nil
	}
	ext := sfRingCurve(p[0])
	for _, hole := range p[1:] {
		region := sfRingRegion(hole)
		touching, err := geom.Touches(ext, region)
		if err != nil {
			return false, fmt.Errorf("testing hole against exterior: %w", err)
		}
		if !touching && geom.Intersects(ext, region) {
			return true, nil
		}
	}
	return false, nil
}

// validatePolygon checks a footprint's input geometry is structurally
// sound before any processing: closed rings with at least three distinct
// vertices, and a kernel-valid simple polygon. Failures are input errors,
// never repaired.
func validatePolygon(id string, p orb.Polygon) error {
	if len(p) == 0 {
		return &InvalidInputGeometryError{ID: id, Reason: fmt.Errorf("empty polygon")}
	}
	for i, r := range p {
		if len(r) < 4 {
			return &InvalidInputGeometryError{ID: id, Reason: fmt.Errorf("ring %d has fewer than 3 distinct vertices", i)}
		}
		if r[0] != r[len(r)-1] {
			return &InvalidInputGeometryError{ID: id, Reason: fmt.Errorf("ring %d is not closed", i)}
		}
	}
	if err := sfGeometry(p).Validate(); err != nil {
		return &InvalidInputGeometryError{ID: id, Reason: err}
	}
	return nil
}
