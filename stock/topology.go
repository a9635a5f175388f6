package stock

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"
)

// areTouching reports whether two footprints share boundary without
// overlapping. A non-empty zero-area intersection (a shared edge or a
// single shared point) is a touch. A nonzero-area intersection is an input
// error: footprints must never overlap, so an OverlapError naming both ids
// is returned.
func areTouching(a, b *Footprint) (bool, error) {
	ga := sfGeometry(a.Polygon)
	gb := sfGeometry(b.Polygon)
	if !geom.Intersects(ga, gb) {
		return false, nil
	}
	touching, err := geom.Touches(ga, gb)
	if err != nil {
		return false, fmt.Errorf("touch test for %s/%s: %w", a.ID, b.ID, err)
	}
	if !touching {
		return false, &OverlapError{IDA: a.ID, IDB: b.ID}
	}
	return true, nil
}

// BuildTouching evaluates every unordered footprint pair once and records
// the symmetric touching relation on both sides. Any overlap aborts with an
// OverlapError before simplification can smear it around.
func (s *Stock) BuildTouching() error {
	ids := s.IDs()
	for _, id := range ids {
		s.byID[id].Touching = nil
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a := s.byID[ids[i]]
			b := s.byID[ids[j]]
			touching, err := areTouching(a, b)
			if err != nil {
				return err
			}
			if touching {
				a.Touching = append(a.Touching, b.ID)
				b.Touching = append(b.Touching, a.ID)
			}
		}
	}
	return nil
}

// buildHoleContainment records, per footprint and per hole ring, which
// touching footprints lie entirely inside that hole. The orchestrator uses
// the relation to land substitutions on the right ring and to cascade
// deletions when a hole disappears.
func (s *Stock) buildHoleContainment() error {
	s.holeContains = make(map[string][][]string)
	for _, id := range s.IDs() {
		a := s.byID[id]
		holes := a.Holes()
		if len(holes) == 0 {
			continue
		}
		perHole := make([][]string, len(holes))
		for k, hole := range holes {
			region := sfRingRegion(hole)
			for _, tid := range a.Touching {
				b, ok := s.byID[tid]
				if !ok {
					continue
				}
				inside, err := geom.Contains(region, sfGeometry(b.Polygon))
				if err != nil {
					return fmt.Errorf("hole containment for %s/%s: %w", a.ID, b.ID, err)
				}
				if inside {
					perHole[k] = append(perHole[k], b.ID)
				}
			}
		}
		s.holeContains[id] = perHole
	}
	return nil
}

// containedIDs flattens the per-hole containment lists for one footprint.
func (s *Stock) containedIDs(id string) []string {
	var out []string
	for _, hole := range s.holeContains[id] {
		out = append(out, hole...)
	}
	return out
}
