package stock

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

// The orchestrator. Each fixpoint iteration scans for footprints with
// coordinates closer together than the tolerance, simplifies them,
// propagates every coordinate merge into touching and hole-containing
// neighbors, revalidates everything touched, and rescans: propagation can
// push a previously-clean neighbor back under the tolerance, so the loop is
// a global fixpoint over the whole collection. It terminates because every
// iteration strictly reduces the total coordinate count.
//
// Footprints are processed in insertion order of their ids throughout, so
// propagation and cascade outcomes are reproducible run to run.

// flaggedIDs returns, in processing order, the ids of footprints with any
// consecutive coordinate pair closer together than tol.
func (s *Stock) flaggedIDs(tol float64) []string {
	var out []string
	for _, id := range s.IDs() {
		if polygonWithinTol(s.byID[id].Polygon, tol) {
			out = append(out, id)
		}
	}
	return out
}

// Simplify drives the simplification fixpoint over the whole collection.
// BuildTouching must have been called first; the touching relation is used
// to direct propagation and is refreshed by the pipeline once the fixpoint
// settles.
//
// Within an iteration, edits commit footprint by footprint as the pass
// walks the fixed processing order, not from a single start-of-iteration
// snapshot. Later footprints in the same pass therefore see the already
// propagated coordinates of earlier ones; the stable order keeps the
// outcome reproducible.
func (s *Stock) Simplify(tol float64) error {
	for flagged := s.flaggedIDs(tol); len(flagged) > 0; flagged = s.flaggedIDs(tol) {
		if err := s.buildHoleContainment(); err != nil {
			return err
		}
		for _, id := range flagged {
			f, ok := s.Get(id)
			if !ok {
				continue // removed by an earlier footprint's cascade
			}
			if err := s.simplifyFootprint(f, tol); err != nil {
				return err
			}
		}
		if err := s.rebuildInvalid(); err != nil {
			return err
		}
	}
	return nil
}

// simplifyFootprint simplifies one footprint's rings to their fixpoint,
// then propagates the merges it made into every neighbor that shares
// boundary with it. The new rings are computed in full before anything is
// committed to the arena.
func (s *Stock) simplifyFootprint(f *Footprint, tol float64) error {
	// Neighbors are captured against the pre-simplification boundary:
	// these are the footprints that can share the coordinates about to be
	// merged away.
	neighbors, err := s.liveTouching(f)
	if err != nil {
		return err
	}
	containedIDs := s.containedIDs(f.ID)

	var pairs []removeLeavePair
	outer := simplifyCoords(f.Outer(), tol, &pairs)

	if len(outer) > 3 {
		if f.HasHoles() {
			newPoly := orb.Polygon{orb.Ring(outer)}
			for _, hole := range f.Holes() {
				coords := simplifyCoords(hole, tol, &pairs)
				if len(coords) > 3 {
					newPoly = append(newPoly, orb.Ring(coords))
					continue
				}
				// The hole collapsed; everything nested inside it goes
				// with it, even when sibling holes survive.
				if err := s.removeContainedIn(hole, containedIDs); err != nil {
					return err
				}
			}
			repaired, err := s.repair(f.ID, newPoly, outer, pairs, tol)
			if err != nil {
				return err
			}
			f.Polygon = repaired
		} else {
			f.Polygon = orb.Polygon{orb.Ring(outer)}
		}
	} else {
		s.Drop(f.ID, DropDegenerate)
		s.cascadeRemove(containedIDs)
	}

	if len(pairs) == 0 {
		return nil
	}
	return s.propagate(f.ID, neighbors, pairs, tol)
}

// propagate pushes a simplified footprint's remove/leave pairs into each
// neighbor: onto the matching hole ring when the simplified footprint sits
// inside one of the neighbor's holes, and onto the neighbor's outer
// boundary. Neighbors that collapse below three vertices are dropped with
// their cascade; neighbors left with holes are revalidated.
func (s *Stock) propagate(id string, neighbors []string, pairs []removeLeavePair, tol float64) error {
	for _, tid := range neighbors {
		t, ok := s.Get(tid)
		if !ok {
			continue
		}
		tContained := s.containedIDs(tid)

		if self, alive := s.Get(id); alive && containsID(tContained, id) {
			if err := applyPairsToContainingHoles(t, self, pairs); err != nil {
				return err
			}
		}

		tOuter := applyPairs(t.Outer(), pairs)
		if len(tOuter) <= 3 {
			s.Drop(tid, DropDegenerate)
			s.cascadeRemove(tContained)
			continue
		}
		if t.HasHoles() {
			holes := t.Holes()
			poly := make(orb.Polygon, 0, len(holes)+1)
			poly = append(poly, orb.Ring(tOuter))
			poly = append(poly, holes...)
			repaired, err := s.repair(tid, poly, tOuter, pairs, tol)
			if err != nil {
				return err
			}
			t.Polygon = repaired
		} else {
			t.Polygon = orb.Polygon{orb.Ring(tOuter)}
		}
	}
	return nil
}

// liveTouching returns the ids of surviving footprints currently touching
// f, in processing order. Evaluated fresh rather than from the stored
// graph: earlier simplifications in the same iteration may already have
// moved shared boundaries.
func (s *Stock) liveTouching(f *Footprint) ([]string, error) {
	g := sfGeometry(f.Polygon)
	var out []string
	for _, id := range s.IDs() {
		if id == f.ID {
			continue
		}
		t := s.byID[id]
		touching, err := geom.Touches(g, sfGeometry(t.Polygon))
		if err != nil {
			return nil, fmt.Errorf("touch test for %s/%s: %w", f.ID, id, err)
		}
		if touching {
			out = append(out, id)
		}
	}
	return out, nil
}

// applyPairsToContainingHoles lands substitutions on the hole ring of t
// that contains the simplified footprint, so the edit hits the matching
// ring rather than just somewhere in the neighbor.
func applyPairsToContainingHoles(t *Footprint, inner *Footprint, pairs []removeLeavePair) error {
	g := sfGeometry(inner.Polygon)
	for k, hole := range t.Holes() {
		contains, err := geom.Contains(sfRingRegion(hole), g)
		if err != nil {
			return fmt.Errorf("hole match for %s in %s: %w", inner.ID, t.ID, err)
		}
		if contains {
			t.Polygon[k+1] = orb.Ring(applyPairs(hole, pairs))
		}
	}
	return nil
}

// rebuildInvalid repairs footprints whose polygons became self-intersecting
// after substitutions, by resolving them through a non-zero winding union.
// Coordinates that moved in the rebuild are pushed to touching neighbors by
// nearest-new-coordinate replacement so shared edges stay aligned.
func (s *Stock) rebuildInvalid() error {
	for _, id := range s.IDs() {
		f := s.byID[id]
		if sfGeometry(f.Polygon).Validate() == nil {
			continue
		}
		parts := resolveSelfIntersections(f.Polygon)
		if len(parts) == 0 {
			contained := s.containedIDs(id)
			s.Drop(id, DropDegenerate)
			s.cascadeRemove(contained)
			continue
		}
		newPoly := largestPolygon(parts)
		snapPolygon(newPoly, f.Polygon)

		if len(f.Touching) > 0 {
			fresh := coordDiff(newPoly[0], f.Polygon[0])
			removed := coordDiff(f.Polygon[0], newPoly[0])
			if len(fresh) > 0 {
				for _, tid := range f.Touching {
					t, ok := s.Get(tid)
					if !ok {
						continue
					}
					t.Polygon[0] = orb.Ring(replaceNearest(t.Outer(), fresh, removed))
				}
			}
		}
		f.Polygon = newPoly
	}
	return nil
}

// largestPolygon picks the biggest-area part of a multi-part rebuild. The
// smaller slivers are artifacts of the self-intersection being resolved.
func largestPolygon(parts []orb.Polygon) orb.Polygon {
	best := parts[0]
	bestArea := ringShoelace(best[0])
	for _, p := range parts[1:] {
		if a := ringShoelace(p[0]); a > bestArea {
			bestArea = a
			best = p
		}
	}
	return best
}

func ringShoelace(r orb.Ring) float64 {
	var sum float64
	for i := 0; i+1 < len(r); i++ {
		sum += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

// snapPolygon replaces rebuilt coordinates with their exact originals
// wherever they differ only by the integer-space quantum, so untouched
// vertices survive the rebuild bit-identical.
func snapPolygon(p orb.Polygon, original orb.Polygon) {
	var origPts []orb.Point
	for _, r := range original {
		origPts = append(origPts, r...)
	}
	const snapEps = 2.0 / clipperScale
	for _, r := range p {
		for i, c := range r {
			for _, o := range origPts {
				if dist(c, o) <= snapEps {
					r[i] = o
					break
				}
			}
		}
	}
}

// coordDiff returns the coordinates of a that do not occur in b.
func coordDiff(a, b orb.Ring) []orb.Point {
	inB := make(map[orb.Point]struct{}, len(b))
	for _, c := range b {
		inB[c] = struct{}{}
	}
	var out []orb.Point
	for _, c := range a {
		if _, ok := inB[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
