package stock

import (
	"fmt"

	"github.com/paulmach/orb"
)

// MinBridgeLength is the shortest allowed attachment bridge between an
// outer-ring coordinate and a hole coordinate during stitching. Bridges at
// or below this length would degenerate into coincident points.
const MinBridgeLength = 0.015

// stitchedHole is one hole ring split at its attachment point: a single
// chain when the attachment is the ring's first vertex, otherwise the two
// sub-chains either side of it.
type stitchedHole struct {
	chains [][]orb.Point
}

// Stitch converts a polygon with holes into one traversable oriented loop.
// Each hole is bridged to the outer ring at the closest coordinate pair
// whose separation exceeds MinBridgeLength; the walk follows the outer ring
// and, at each attachment point, detours around every hole attached there
// before continuing. With canonical orientation (outer clockwise, holes
// counter-clockwise) the emitted loop keeps solid material on a consistent
// side throughout, which is what the flat-surface emitter requires.
//
// A polygon without holes is returned as a copy of its outer ring.
func Stitch(p orb.Polygon) ([]orb.Point, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("stitch: empty polygon")
	}
	outer := []orb.Point(p[0])
	if len(p) == 1 {
		return append([]orb.Point(nil), outer...), nil
	}

	// Find each hole's attachment bridge. Holes are keyed by their outer
	// attachment point; several holes may share one, in which case they
	// splice in input order.
	attached := make(map[orb.Point][]stitchedHole)
	for k, hole := range p[1:] {
		op, ip, ok := closestBridge(outer, hole)
		if !ok {
			return nil, fmt.Errorf("stitch: no bridge longer than %v for hole %d", MinBridgeLength, k)
		}
		attached[op] = append(attached[op], splitHole(hole, ip))
	}

	// Split the outer ring at every interior occurrence of an attachment
	// point. The first chain always starts at the ring's first coordinate.
	chains := splitAtAttachments(outer, attached)

	var out []orb.Point
	start := chains[0][0]
	for _, chain := range chains {
		first := chain[0]
		holes, ok := attached[first]
		if !ok {
			// No detour here: emit the chain up to, but excluding, its
			// last coordinate, which the next chain (or the final
			// closure) covers.
			out = append(out, chain[:len(chain)-1]...)
			continue
		}
		out = append(out, first)
		for _, h := range holes {
			if len(h.chains) == 1 {
				out = append(out, h.chains[0]...)
			} else {
				out = append(out, h.chains[1]...)
				out = append(out, h.chains[0][1:]...)
			}
			out = append(out, first)
		}
		out = append(out, chain[1:len(chain)-1]...)
	}
	out = append(out, start)
	return out, nil
}

// closestBridge returns the closest (outerPoint, holePoint) pair whose
// separation exceeds MinBridgeLength. Ties keep the earliest pair in scan
// order so re-runs reproduce the same bridge.
func closestBridge(outer []orb.Point, hole orb.Ring) (orb.Point, orb.Point, bool) {
	var op, ip orb.Point
	best := -1.0
	for i := 0; i+1 < len(outer); i++ {
		for j := 0; j+1 < len(hole); j++ {
			d := dist(outer[i], hole[j])
			if d <= MinBridgeLength {
				continue
			}
			if best < 0 || d < best {
				best = d
				op = outer[i]
				ip = hole[j]
			}
		}
	}
	return op, ip, best >= 0
}

// splitHole splits a closed hole ring at its attachment point. Attachment
// at the first vertex leaves the ring whole; anywhere else produces the
// two sub-chains either side of the split.
func splitHole(hole orb.Ring, at orb.Point) stitchedHole {
	split := 0
	for i, c := range hole {
		if c == at {
			split = i
			break
		}
	}
	if split == 0 {
		return stitchedHole{chains: [][]orb.Point{append([]orb.Point(nil), hole...)}}
	}
	first := append([]orb.Point(nil), hole[:split+1]...)
	last := append([]orb.Point(nil), hole[split:]...)
	return stitchedHole{chains: [][]orb.Point{first, last}}
}

// splitAtAttachments cuts the closed outer ring at each interior occurrence
// of an attachment point. With no interior attachment the whole ring comes
// back as a single chain.
func splitAtAttachments(outer []orb.Point, attached map[orb.Point][]stitchedHole) [][]orb.Point {
	var cuts []int
	for i := 1; i+1 < len(outer); i++ {
		if _, ok := attached[outer[i]]; ok {
			cuts = append(cuts, i)
		}
	}
	if len(cuts) == 0 {
		return [][]orb.Point{append([]orb.Point(nil), outer...)}
	}
	var chains [][]orb.Point
	prev := 0
	for _, cut := range cuts {
		chains = append(chains, append([]orb.Point(nil), outer[prev:cut+1]...))
		prev = cut
	}
	chains = append(chains, append([]orb.Point(nil), outer[prev:]...))
	return chains
}
