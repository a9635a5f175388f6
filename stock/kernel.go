package stock

import (
	"math"

	clipper "github.com/ctessum/go.clipper"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/peterstace/simplefeatures/geom"
)

// This file owns every conversion between the engine's orb-based coordinate
// model and the two kernels it leans on: simplefeatures for predicates and
// boolean set operations, and the Clipper port for polygon offsetting and
// self-intersection resolution. Nothing outside this file builds kernel
// geometries by hand.

// clipperScale converts float coordinates to Clipper's integer space.
// Input coordinates are metre-scale map references, so 1e7 keeps seven
// decimal places well inside the int64 range Clipper needs.
const clipperScale = 1e7

func sfLineString(coords []orb.Point) geom.LineString {
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		flat = append(flat, c[0], c[1])
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}

func sfPolygon(p orb.Polygon) geom.Polygon {
	rings := make([]geom.LineString, len(p))
	for i, r := range p {
		rings[i] = sfLineString(r)
	}
	return geom.NewPolygon(rings)
}

// sfGeometry returns the polygon (outer ring plus holes) as a kernel
// geometry.
func sfGeometry(p orb.Polygon) geom.Geometry {
	return sfPolygon(p).AsGeometry()
}

// sfRingCurve returns the ring as a closed curve, not a filled region.
func sfRingCurve(r orb.Ring) geom.Geometry {
	return sfLineString(r).AsGeometry()
}

// sfRingRegion returns the ring interpreted as a solid filled region.
func sfRingRegion(r orb.Ring) geom.Geometry {
	return geom.NewPolygon([]geom.LineString{sfLineString(r)}).AsGeometry()
}

func seqPoints(seq geom.Sequence) []orb.Point {
	out := make([]orb.Point, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		out[i] = orb.Point{xy.X, xy.Y}
	}
	return out
}

func orbPolygon(p geom.Polygon) orb.Polygon {
	out := orb.Polygon{orb.Ring(seqPoints(p.ExteriorRing().Coordinates()))}
	for i := 0; i < p.NumInteriorRings(); i++ {
		out = append(out, orb.Ring(seqPoints(p.InteriorRingN(i).Coordinates())))
	}
	return out
}

// polygonsOf extracts the areal parts of a kernel result as a flat list of
// polygons. Handles the closed set of variants the kernels can hand back:
// empty, single polygon, multi-polygon, or a collection mixing areal parts
// with lower-dimensional debris (which is ignored).
func polygonsOf(g geom.Geometry) []orb.Polygon {
	if g.IsEmpty() {
		return nil
	}
	switch g.Type() {
	case geom.TypePolygon:
		return []orb.Polygon{orbPolygon(g.MustAsPolygon())}
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		out := make([]orb.Polygon, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			out = append(out, orbPolygon(mp.PolygonN(i)))
		}
		return out
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		var out []orb.Polygon
		for i := 0; i < gc.NumGeometries(); i++ {
			out = append(out, polygonsOf(gc.GeometryN(i))...)
		}
		return out
	}
	return nil
}

// linework is the closed set of shapes the engine accepts from kernel curve
// results: no chains, one chain, or several chains. Point results and areal
// debris collapse to no chains.
type linework struct {
	chains [][]orb.Point
}

func (lw linework) empty() bool {
	return len(lw.chains) == 0
}

func lineworkOf(g geom.Geometry) linework {
	var lw linework
	lw.collect(g)
	return lw
}

func (lw *linework) collect(g geom.Geometry) {
	if g.IsEmpty() {
		return
	}
	switch g.Type() {
	case geom.TypeLineString:
		lw.chains = append(lw.chains, seqPoints(g.MustAsLineString().Coordinates()))
	case geom.TypeMultiLineString:
		mls := g.MustAsMultiLineString()
		for i := 0; i < mls.NumLineStrings(); i++ {
			lw.chains = append(lw.chains, seqPoints(mls.LineStringN(i).Coordinates()))
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			lw.collect(gc.GeometryN(i))
		}
	}
}

// merged joins chains that share endpoints into maximal chains, so that a
// collinear scan can see across what were separate kernel fragments.
func (lw linework) merged() linework {
	chains := make([][]orb.Point, len(lw.chains))
	copy(chains, lw.chains)
	for {
		joined := false
		for i := 0; i < len(chains) && !joined; i++ {
			for j := i + 1; j < len(chains) && !joined; j++ {
				if m, ok := joinChains(chains[i], chains[j]); ok {
					chains[i] = m
					chains = append(chains[:j], chains[j+1:]...)
					joined = true
				}
			}
		}
		if !joined {
			return linework{chains: chains}
		}
	}
}

func joinChains(a, b []orb.Point) ([]orb.Point, bool) {
	if len(a) == 0 || len(b) == 0 {
		return nil, false
	}
	switch {
	case a[len(a)-1] == b[0]:
		return append(append([]orb.Point{}, a...), b[1:]...), true
	case b[len(b)-1] == a[0]:
		return append(append([]orb.Point{}, b...), a[1:]...), true
	case a[len(a)-1] == b[len(b)-1]:
		return append(append([]orb.Point{}, a...), reversed(b)[1:]...), true
	case a[0] == b[0]:
		return append(reversed(b), a[1:]...), true
	}
	return nil, false
}

func reversed(coords []orb.Point) []orb.Point {
	out := make([]orb.Point, len(coords))
	for i, c := range coords {
		out[len(coords)-1-i] = c
	}
	return out
}

func toClipperPath(coords []orb.Point) clipper.Path {
	n := len(coords)
	if n > 1 && coords[0] == coords[n-1] {
		n-- // Clipper paths are implicitly closed
	}
	path := make(clipper.Path, 0, n)
	for _, c := range coords[:n] {
		path = append(path, clipper.NewIntPoint(
			clipper.CInt(math.Round(c[0]*clipperScale)),
			clipper.CInt(math.Round(c[1]*clipperScale)),
		))
	}
	return path
}

func fromClipperPath(path clipper.Path) orb.Ring {
	ring := make(orb.Ring, 0, len(path)+1)
	for _, ip := range path {
		ring = append(ring, orb.Point{
			float64(ip.X) / clipperScale,
			float64(ip.Y) / clipperScale,
		})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}

// polygonsFromPaths reassembles a Clipper solution into polygons, assigning
// each hole path to the outer path that contains it. Ring orientation is
// left for the caller to canonicalize.
func polygonsFromPaths(sol clipper.Paths) []orb.Polygon {
	var polys []orb.Polygon
	var holes []orb.Ring
	for _, path := range sol {
		if len(path) < 3 {
			continue
		}
		ring := fromClipperPath(path)
		if clipper.Orientation(path) {
			polys = append(polys, orb.Polygon{ring})
		} else {
			holes = append(holes, ring)
		}
	}
	for _, h := range holes {
		for i := range polys {
			if planar.RingContains(polys[i][0], h[0]) {
				polys[i] = append(polys[i], h)
				break
			}
		}
	}
	return polys
}

// offsetRing offsets a single ring by delta (negative erodes inward,
// positive inflates outward) and returns the resulting region, which may be
// empty or split into several polygons. Miter joins keep offset edges
// parallel to the originals so eroded boundaries stay straight.
func offsetRing(r orb.Ring, delta float64) []orb.Polygon {
	path := toClipperPath(r)
	if len(path) < 3 {
		return nil
	}
	// Clipper inflates positively-oriented paths for positive deltas.
	if !clipper.Orientation(path) {
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
	}
	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)
	return polygonsFromPaths(co.Execute(delta * clipperScale))
}

// resolveSelfIntersections rebuilds a possibly self-intersecting polygon
// into zero or more simple polygons using a non-zero winding union, the
// integer-space equivalent of the classic zero-width buffer repair.
func resolveSelfIntersections(p orb.Polygon) []orb.Polygon {
	c := clipper.NewClipper(0)
	added := false
	for _, ring := range p {
		path := toClipperPath(ring)
		if len(path) < 3 {
			continue
		}
		c.AddPath(path, clipper.PtSubject, true)
		added = true
	}
	if !added {
		return nil
	}
	sol, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return nil
	}
	return polygonsFromPaths(sol)
}

// unionAll folds the footprint polygons into one region. The result is the
// island composer's raw material. An empty input yields the empty geometry.
func unionAll(polys []orb.Polygon) (geom.Geometry, error) {
	if len(polys) == 0 {
		return geom.Geometry{}, nil
	}
	acc := sfGeometry(polys[0])
	for _, p := range polys[1:] {
		g, err := geom.Union(acc, sfGeometry(p))
		if err != nil {
			return geom.Geometry{}, err
		}
		acc = g
	}
	return acc, nil
}
