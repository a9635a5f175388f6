package stock

import (
	"math"

	"github.com/paulmach/orb"
)

// collinearEps is the triangle-area threshold below which three consecutive
// coordinates are treated as collinear.
const collinearEps = 1e-9

// removeLeavePair records one coordinate merge made by radial
// simplification: every occurrence of Removed, in any ring that still
// references it, is to be replaced by Kept. Propagating these pairs into
// touching and hole-containing neighbors is what keeps shared boundaries
// bit-identical across footprints.
type removeLeavePair struct {
	Removed orb.Point
	Kept    orb.Point
}

func dist(a, b orb.Point) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}

// removeDuplicates drops repeated coordinates from a list, keeping the
// first occurrence of each. If the list was closed (first == last) the
// closure is restored on the result.
func removeDuplicates(coords []orb.Point) []orb.Point {
	if len(coords) == 0 {
		return coords
	}
	closed := coords[0] == coords[len(coords)-1]
	seen := make(map[orb.Point]struct{}, len(coords))
	out := make([]orb.Point, 0, len(coords))
	for _, c := range coords {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if closed {
		out = append(out, out[0])
	}
	return out
}

// withinTolerance reports whether any two consecutive coordinates are
// closer together than tol.
func withinTolerance(coords []orb.Point, tol float64) bool {
	for i := 0; i+1 < len(coords); i++ {
		if dist(coords[i], coords[i+1]) < tol {
			return true
		}
	}
	return false
}

// removePoint removes every occurrence of p from the list. If the list was
// closed, closure is restored afterwards.
func removePoint(coords []orb.Point, p orb.Point) []orb.Point {
	closed := len(coords) > 0 && coords[0] == coords[len(coords)-1]
	out := make([]orb.Point, 0, len(coords))
	for _, c := range coords {
		if c != p {
			out = append(out, c)
		}
	}
	if closed && len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

// removePoints removes every occurrence of each listed point, restoring
// closure if the input was closed.
func removePoints(coords []orb.Point, points []orb.Point) []orb.Point {
	if len(points) == 0 {
		return coords
	}
	drop := make(map[orb.Point]struct{}, len(points))
	for _, p := range points {
		drop[p] = struct{}{}
	}
	closed := len(coords) > 0 && coords[0] == coords[len(coords)-1]
	out := make([]orb.Point, 0, len(coords))
	for _, c := range coords {
		if _, ok := drop[c]; !ok {
			out = append(out, c)
		}
	}
	if closed && len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

// radialSimplify scans consecutive coordinate pairs in order and merges the
// first pair closer together than tol. The second point of the pair is the
// one dropped, unless the pair is the final segment, in which case the
// first is dropped instead. This asymmetric tie-break is deliberately kept:
// shared-edge consistency across footprints depends on it being
// deterministic, not on it being distance-optimal.
//
// It returns the reduced list, the (removed, kept) pair, and whether a
// merge happened.
func radialSimplify(coords []orb.Point, tol float64) ([]orb.Point, removeLeavePair, bool) {
	for i := 0; i+1 < len(coords); i++ {
		if dist(coords[i], coords[i+1]) >= tol {
			continue
		}
		var pair removeLeavePair
		if i < len(coords)-2 {
			pair = removeLeavePair{Removed: coords[i+1], Kept: coords[i]}
		} else {
			pair = removeLeavePair{Removed: coords[i], Kept: coords[i+1]}
		}
		return removePoint(coords, pair.Removed), pair, true
	}
	return coords, removeLeavePair{}, false
}

// simplifyCoords applies radialSimplify repeatedly, restarting the scan
// from the beginning after each merge, until no merge occurs or fewer than
// four coordinates remain (a closed triangle). Every pair produced is
// appended to pairs so the caller can propagate the merges into
// neighboring rings.
func simplifyCoords(coords []orb.Point, tol float64, pairs *[]removeLeavePair) []orb.Point {
	prev := len(coords) + 1
	for len(coords) < prev && len(coords) > 3 {
		prev = len(coords)
		var pair removeLeavePair
		var ok bool
		coords, pair, ok = radialSimplify(coords, tol)
		if ok {
			*pairs = append(*pairs, pair)
		}
	}
	return coords
}

// applyPairs substitutes every (removed, kept) pair into the coordinate
// list, in pair order, then washes out any duplicates the substitutions
// introduced. This pushes one ring's simplification into any other ring
// that shares the removed coordinates.
func applyPairs(coords []orb.Point, pairs []removeLeavePair) []orb.Point {
	out := make([]orb.Point, len(coords))
	copy(out, coords)
	for _, p := range pairs {
		for i, c := range out {
			if c == p.Removed {
				out[i] = p.Kept
			}
		}
	}
	return removeDuplicates(out)
}

// replaceNearest substitutes each coordinate listed in removed with its
// nearest coordinate from fresh, then removes duplicates. Used after a
// validity rebuild changes a polygon's vertices: neighbors that referenced
// an old vertex are snapped to the closest rebuilt one.
func replaceNearest(coords []orb.Point, fresh, removed []orb.Point) []orb.Point {
	if len(fresh) == 0 {
		return removeDuplicates(coords)
	}
	out := make([]orb.Point, len(coords))
	copy(out, coords)
	for _, rc := range removed {
		for i, c := range out {
			if c != rc {
				continue
			}
			best := fresh[0]
			bestDist := dist(rc, fresh[0])
			for _, nc := range fresh[1:] {
				if d := dist(rc, nc); d < bestDist {
					bestDist = d
					best = nc
				}
			}
			out[i] = best
		}
	}
	return removeDuplicates(out)
}

// triangleArea returns the area of the triangle spanned by three points.
func triangleArea(a, b, c orb.Point) float64 {
	return math.Abs((b[0]-a[0])*(c[1]-a[1])-(c[0]-a[0])*(b[1]-a[1])) / 2
}

// collinearPoints slides a three-coordinate window over the list and
// returns every middle point whose triangle has effectively zero area.
// A single pass: the returned points are candidates for removal, and
// removal does not re-trigger the scan. Callers working on cyclic rings
// append the wrap-around coordinate before calling.
func collinearPoints(coords []orb.Point) []orb.Point {
	if len(coords) < 3 {
		return nil
	}
	var out []orb.Point
	for i := 0; i+2 < len(coords); i++ {
		if triangleArea(coords[i], coords[i+1], coords[i+2]) <= collinearEps {
			out = append(out, coords[i+1])
		}
	}
	return out
}
