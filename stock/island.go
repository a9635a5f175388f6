package stock

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

// ComposeIslands unions all surviving footprints into maximal connected
// regions ("built islands"), derives a stable identifier for each region,
// and assigns every footprint to the island containing it. Identifiers are
// based on a representative interior point of the region rather than on
// footprint ids, so a re-run on unchanged data reproduces the same names
// even when unrelated footprints appear elsewhere in the input.
//
// Returns the footprint count per island. A footprint that lands in no
// island means a residual overlap survived the fixpoint, which is an
// invariant violation reported as UnresolvedIslandError.
func (s *Stock) ComposeIslands() (map[string]int, error) {
	ids := s.IDs()
	if len(ids) == 0 {
		return map[string]int{}, nil
	}
	for _, id := range ids {
		s.byID[id].Island = ""
	}

	polys := make([]orb.Polygon, 0, len(ids))
	for _, id := range ids {
		polys = append(polys, s.byID[id].Polygon)
	}
	union, err := unionAll(polys)
	if err != nil {
		return nil, err
	}

	var components []geom.Geometry
	switch union.Type() {
	case geom.TypeMultiPolygon:
		mp := union.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			components = append(components, mp.PolygonN(i).AsGeometry())
		}
	default:
		components = append(components, union)
	}

	counts := make(map[string]int, len(components))
	for _, comp := range components {
		name := islandName(comp)
		for _, id := range ids {
			f := s.byID[id]
			if f.Island != "" {
				continue
			}
			within, err := geom.Within(sfGeometry(f.Polygon), comp)
			if err != nil {
				return nil, err
			}
			if within {
				f.Island = name
				counts[name]++
			}
		}
	}

	for _, id := range ids {
		if s.byID[id].Island == "" {
			return nil, &UnresolvedIslandError{ID: id}
		}
	}
	return counts, nil
}

// islandName formats a filesystem-safe island identifier from the rounded
// representative point of the region. Rounding to two decimals keeps the
// name stable against floating noise between runs.
func islandName(region geom.Geometry) string {
	pt := region.PointOnSurface()
	xy, _ := pt.XY()
	name := "bi_" + roundCoord(xy.X) + "_" + roundCoord(xy.Y)
	return strings.ReplaceAll(name, ".", "-")
}

func roundCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
