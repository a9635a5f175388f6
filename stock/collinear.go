package stock

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

// CollinearPass removes the collinear points that simplification leaves
// behind and derives each footprint's exposed perimeter.
//
// Phase one walks every touching pair and removes collinear points from
// the shared linework on both sides at once, keeping the shared edge
// pointwise identical. Phase two subtracts all shared linework from each
// footprint's boundary to get the exposed chains (the walls a surface
// emitter would glaze), strips their collinear points, and stores a fully
// collinear-free "horizontal" polygon for floor and roof emission.
func (s *Stock) CollinearPass() error {
	for _, id := range s.IDs() {
		f := s.byID[id]
		for _, tid := range f.Touching {
			t, ok := s.Get(tid)
			if !ok {
				continue
			}
			shared, err := geom.Intersection(sfGeometry(f.Polygon), sfGeometry(t.Polygon))
			if err != nil {
				return fmt.Errorf("shared linework for %s/%s: %w", id, tid, err)
			}
			var pts []orb.Point
			for _, chain := range lineworkOf(shared).merged().chains {
				pts = append(pts, collinearPoints(chain)...)
			}
			if len(pts) > 0 {
				f.Polygon = removePointsPolygon(f.Polygon, pts)
				t.Polygon = removePointsPolygon(t.Polygon, pts)
			}
		}
	}

	for _, id := range s.IDs() {
		f := s.byID[id]
		if len(f.Touching) == 0 {
			f.Polygon = removeCollinearHorizontal(f.Polygon)
			f.Horizontal = f.Polygon
			exposed, err := ringsUnion(f.Polygon)
			if err != nil {
				return fmt.Errorf("exposed perimeter for %s: %w", id, err)
			}
			f.Exposed = exposedChains(lineworkOf(exposed))
			continue
		}

		exposed, err := ringsUnion(f.Polygon)
		if err != nil {
			return fmt.Errorf("exposed perimeter for %s: %w", id, err)
		}
		for _, tid := range f.Touching {
			t, ok := s.Get(tid)
			if !ok {
				continue
			}
			shared, err := geom.Intersection(sfGeometry(f.Polygon), sfGeometry(t.Polygon))
			if err != nil {
				return fmt.Errorf("shared linework for %s/%s: %w", id, tid, err)
			}
			exposed, err = geom.Difference(exposed, shared)
			if err != nil {
				return fmt.Errorf("subtracting shared linework for %s/%s: %w", id, tid, err)
			}
		}

		lw := lineworkOf(exposed)
		var pts []orb.Point
		for _, chain := range lw.chains {
			pts = append(pts, collinearPoints(chain)...)
		}
		if len(pts) > 0 {
			lw = dropPointsLinework(lw, pts)
			f.Polygon = removePointsPolygon(f.Polygon, pts)
		}
		f.Exposed = exposedChains(lw)
		f.Horizontal = removeCollinearHorizontal(f.Polygon)
	}
	return nil
}

// removeCollinearHorizontal strips every collinear point from the polygon,
// including across each ring's closure, by scanning the rings as cyclic
// chains with the wrap-around coordinate appended.
func removeCollinearHorizontal(p orb.Polygon) orb.Polygon {
	g, err := ringsUnion(p)
	if err != nil {
		return p
	}
	var pts []orb.Point
	for _, chain := range lineworkOf(g).chains {
		cyclic := append([]orb.Point(nil), chain...)
		if len(chain) > 1 {
			cyclic = append(cyclic, chain[1])
		}
		pts = append(pts, collinearPoints(cyclic)...)
	}
	return removePointsPolygon(p, pts)
}

// ringsUnion merges a polygon's rings into one kernel linework geometry.
func ringsUnion(p orb.Polygon) (geom.Geometry, error) {
	if len(p) == 0 {
		return geom.Geometry{}, nil
	}
	acc := sfRingCurve(p[0])
	for _, r := range p[1:] {
		g, err := geom.Union(acc, sfRingCurve(r))
		if err != nil {
			return geom.Geometry{}, err
		}
		acc = g
	}
	return acc, nil
}

// removePointsPolygon removes the listed coordinates from every ring,
// preserving closure.
func removePointsPolygon(p orb.Polygon, pts []orb.Point) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, r := range p {
		out = append(out, orb.Ring(removePoints(r, pts)))
	}
	return out
}

// dropPointsLinework removes the listed coordinates from every chain,
// discarding chains reduced below two coordinates.
func dropPointsLinework(lw linework, pts []orb.Point) linework {
	var out linework
	for _, chain := range lw.chains {
		reduced := removePoints(chain, pts)
		if len(reduced) > 1 {
			out.chains = append(out.chains, reduced)
		}
	}
	return out
}

func exposedChains(lw linework) []orb.LineString {
	out := make([]orb.LineString, 0, len(lw.chains))
	for _, chain := range lw.chains {
		out = append(out, orb.LineString(chain))
	}
	return out
}
