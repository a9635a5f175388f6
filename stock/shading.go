package stock

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

// SelectShading picks, from the context footprints, those close enough to
// the core set to matter as shading obstructions: the core is dissolved,
// its convex hull buffered outward by radius, and every context footprint
// intersecting the buffered region is returned with its Shading flag set.
// A radius of zero or less means "no limit": all context footprints are
// included.
//
// The returned footprints are the inputs themselves, mutated; callers add
// them to the working Stock alongside the core.
func SelectShading(core, context []*Footprint, radius float64) ([]*Footprint, error) {
	if radius <= 0 {
		for _, f := range context {
			f.Shading = true
		}
		return context, nil
	}

	polys := make([]orb.Polygon, 0, len(core))
	for _, f := range core {
		polys = append(polys, f.Polygon)
	}
	dissolved, err := unionAll(polys)
	if err != nil {
		return nil, fmt.Errorf("dissolving core footprints: %w", err)
	}
	hull := polygonsOf(dissolved.ConvexHull())
	if len(hull) == 0 {
		return nil, fmt.Errorf("core footprints have no areal hull")
	}
	region, err := unionAll(offsetRing(hull[0][0], radius))
	if err != nil {
		return nil, fmt.Errorf("buffering shading region: %w", err)
	}

	var out []*Footprint
	for _, f := range context {
		if geom.Intersects(region, sfGeometry(f.Polygon)) {
			f.Shading = true
			out = append(out, f)
		}
	}
	return out, nil
}
