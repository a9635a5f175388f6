package stock

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

// repairJob queues one footprint for an invalid-interior repair pass. The
// repair of a footprint can shrink a hole and hand a smaller region to a
// footprint nested inside it, whose own holes may then be inconsistent with
// the shrunk container; those follow-ups are queued rather than recursed so
// that adversarially deep nesting cannot blow the call stack.
type repairJob struct {
	id    string
	poly  orb.Polygon
	outer []orb.Point
	pairs []removeLeavePair
}

// repair fixes a polygon whose holes partially overlap its exterior, and
// works the resulting nested-footprint follow-ups to exhaustion. The
// top-level polygon's repaired form is returned; nested footprints are
// updated in the arena directly.
func (s *Stock) repair(id string, poly orb.Polygon, outer []orb.Point, pairs []removeLeavePair, tol float64) (orb.Polygon, error) {
	result, nested, err := s.repairOne(repairJob{id: id, poly: poly, outer: outer, pairs: pairs}, tol)
	if err != nil {
		return nil, err
	}
	stack := nested
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		repaired, more, err := s.repairOne(j, tol)
		if err != nil {
			return nil, err
		}
		if f, ok := s.Get(j.id); ok {
			f.Polygon = repaired
		}
		stack = append(stack, more...)
	}
	return result, nil
}

// repairOne runs a single shrink-or-drop pass over one polygon's holes:
// holes fully inside the eroded exterior are kept, holes crossing it are
// clipped to the intersection (and re-simplified), and holes pushed clear
// of the eroded exterior are dropped with their contained footprints
// cascaded away. Inconsistency is always resolved; nothing is left invalid.
func (s *Stock) repairOne(j repairJob, tol float64) (orb.Polygon, []repairJob, error) {
	inconsistent, err := selfInconsistent(j.poly)
	if err != nil {
		return nil, nil, err
	}
	if !inconsistent {
		return j.poly, nil, nil
	}

	containedIDs := s.containedIDs(j.id)
	erodedParts := offsetRing(orb.Ring(j.outer), -tol)
	if len(erodedParts) == 0 {
		// The exterior eroded away entirely: no hole can survive.
		for _, hole := range j.poly[1:] {
			if err := s.removeContainedIn(hole, containedIDs); err != nil {
				return nil, nil, err
			}
		}
		return orb.Polygon{orb.Ring(j.outer)}, nil, nil
	}
	eroded, err := unionAll(erodedParts)
	if err != nil {
		return nil, nil, fmt.Errorf("eroding %s: %w", j.id, err)
	}

	var nested []repairJob
	kept := orb.Polygon{orb.Ring(j.outer)}
	for _, hole := range j.poly[1:] {
		holeRegion := sfRingRegion(hole)

		within, err := geom.Within(holeRegion, eroded)
		if err != nil {
			return nil, nil, fmt.Errorf("repairing %s: %w", j.id, err)
		}
		if within {
			kept = append(kept, hole)
			continue
		}
		if !geom.Intersects(eroded, holeRegion) {
			if err := s.removeContainedIn(hole, containedIDs); err != nil {
				return nil, nil, err
			}
			continue
		}

		ig, err := geom.Intersection(eroded, holeRegion)
		if err != nil {
			return nil, nil, fmt.Errorf("clipping hole of %s: %w", j.id, err)
		}
		parts := polygonsOf(ig)
		if len(parts) == 0 || len(parts[0][0]) <= 3 {
			if err := s.removeContainedIn(hole, containedIDs); err != nil {
				return nil, nil, err
			}
			continue
		}
		newInner := []orb.Point(parts[0][0])

		if len(containedIDs) == 0 {
			var scratch []removeLeavePair
			newInner = simplifyCoords(newInner, tol, &scratch)
		} else {
			more, shrunk, err := s.repairNested(holeRegion, newInner, containedIDs, j.pairs, tol)
			if err != nil {
				return nil, nil, err
			}
			nested = append(nested, more...)
			newInner = shrunk
		}

		if len(newInner) > 3 {
			kept = append(kept, orb.Ring(ccwRing(newInner)))
		} else if err := s.removeContainedIn(hole, containedIDs); err != nil {
			return nil, nil, err
		}
	}
	return kept, nested, nil
}

// repairNested reconciles the footprints nested inside a hole with that
// hole's clipped replacement boundary. Each nested footprint is cut down to
// its intersection with the new hole, the hole is re-simplified around it,
// and the simplification is pushed back onto the nested footprint so the
// shared boundary stays identical. Nested footprints that collapse are
// dropped and cascaded.
func (s *Stock) repairNested(holeRegion geom.Geometry, newInner []orb.Point, containedIDs []string, pairs []removeLeavePair, tol float64) ([]repairJob, []orb.Point, error) {
	var nested []repairJob
	for _, pid := range containedIDs {
		pf, ok := s.Get(pid)
		if !ok {
			continue
		}
		inside, err := geom.Contains(holeRegion, sfGeometry(pf.Polygon))
		if err != nil {
			return nil, nil, fmt.Errorf("nested containment for %s: %w", pid, err)
		}
		if !inside {
			continue
		}

		pOuter := applyPairs(pf.Outer(), pairs)
		innerRegion := sfRingRegion(orb.Ring(newInner))
		pRegion := sfRingRegion(orb.Ring(pOuter))

		interG, err := geom.Intersection(innerRegion, pRegion)
		if err != nil {
			return nil, nil, fmt.Errorf("intersecting nested %s: %w", pid, err)
		}
		diffG, err := geom.Difference(innerRegion, pRegion)
		if err != nil {
			return nil, nil, fmt.Errorf("differencing nested %s: %w", pid, err)
		}
		unitedG, err := geom.Union(diffG, interG)
		if err != nil {
			return nil, nil, fmt.Errorf("uniting nested %s: %w", pid, err)
		}

		var innerPairs []removeLeavePair
		if uparts := polygonsOf(unitedG); len(uparts) > 0 {
			newInner = simplifyCoords([]orb.Point(uparts[0][0]), tol, &innerPairs)
		}
		var pNew []orb.Point
		if iparts := polygonsOf(interG); len(iparts) > 0 {
			pNew = applyPairs([]orb.Point(iparts[0][0]), innerPairs)
		}

		if len(pNew) > 3 {
			if pf.HasHoles() {
				holes := pf.Holes()
				poly := make(orb.Polygon, 0, len(holes)+1)
				poly = append(poly, orb.Ring(pNew))
				poly = append(poly, holes...)
				pf.Polygon = poly
				nested = append(nested, repairJob{id: pid, poly: poly, outer: pNew})
			} else {
				pf.Polygon = orb.Polygon{orb.Ring(pNew)}
			}
		} else {
			ids := s.containedIDs(pid)
			s.Drop(pid, DropDegenerate)
			s.cascadeRemove(ids)
		}
	}
	return nested, newInner, nil
}

// removeContainedIn drops every listed footprint whose polygon lies inside
// the given hole ring, cascading each drop through the footprints nested
// below it.
func (s *Stock) removeContainedIn(hole orb.Ring, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	region := sfRingRegion(hole)
	for _, id := range ids {
		p, ok := s.Get(id)
		if !ok {
			continue
		}
		inside, err := geom.Contains(region, sfGeometry(p.Polygon))
		if err != nil {
			return fmt.Errorf("cascade containment for %s: %w", id, err)
		}
		if inside {
			nestedIDs := s.containedIDs(id)
			s.Drop(id, DropHoleCascade)
			s.cascadeRemove(nestedIDs)
		}
	}
	return nil
}

// cascadeRemove deletes the given footprints and everything nested inside
// them, breadth-first over an explicit queue so the cascade order is
// deterministic and the depth bounded by the work list, not the call stack.
func (s *Stock) cascadeRemove(ids []string) {
	queue := append([]string(nil), ids...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := s.Get(id); !ok {
			continue
		}
		queue = append(queue, s.containedIDs(id)...)
		s.Drop(id, DropHoleCascade)
	}
}
