package stock

import (
	"testing"

	"github.com/paulmach/orb"
)

func containsPoint(coords []orb.Point, p orb.Point) bool {
	for _, c := range coords {
		if c == p {
			return true
		}
	}
	return false
}

func TestCollinearPassUntouchedFootprint(t *testing.T) {
	s := NewStock()
	// A square with a redundant midpoint on its bottom edge.
	s.Add(fp("a", ring(
		[2]float64{0, 0}, [2]float64{2, 0}, [2]float64{4, 0},
		[2]float64{4, 4}, [2]float64{0, 4}, [2]float64{0, 0},
	)))

	if err := s.BuildTouching(); err != nil {
		t.Fatal(err)
	}
	if err := s.CollinearPass(); err != nil {
		t.Fatalf("CollinearPass() error: %v", err)
	}

	f, _ := s.Get("a")
	if containsPoint(f.Outer(), orb.Point{2, 0}) {
		t.Errorf("collinear midpoint survived: %v", f.Outer())
	}
	if len(f.Outer()) != 5 {
		t.Errorf("outer ring has %d coords, want 5: %v", len(f.Outer()), f.Outer())
	}
	if len(f.Horizontal) == 0 {
		t.Error("horizontal polygon not derived")
	}
	if containsPoint(f.Horizontal[0], orb.Point{2, 0}) {
		t.Error("collinear midpoint survived in the horizontal polygon")
	}
	if len(f.Exposed) == 0 {
		t.Error("untouched footprint has no exposed perimeter")
	}
}

func TestCollinearPassSharedEdge(t *testing.T) {
	s := NewStock()
	// The shared x=2 edge carries a redundant midpoint at (2,1) on both
	// sides; phase one must remove it from both at once.
	s.Add(fp("a", ring(
		[2]float64{0, 0}, [2]float64{2, 0}, [2]float64{2, 1},
		[2]float64{2, 2}, [2]float64{0, 2}, [2]float64{0, 0},
	)))
	s.Add(fp("b", ring(
		[2]float64{2, 0}, [2]float64{4, 0}, [2]float64{4, 2},
		[2]float64{2, 2}, [2]float64{2, 1}, [2]float64{2, 0},
	)))

	if err := s.BuildTouching(); err != nil {
		t.Fatal(err)
	}
	if err := s.CollinearPass(); err != nil {
		t.Fatalf("CollinearPass() error: %v", err)
	}

	a, _ := s.Get("a")
	b, _ := s.Get("b")
	if containsPoint(a.Outer(), orb.Point{2, 1}) {
		t.Errorf("shared-edge midpoint survived on a: %v", a.Outer())
	}
	if containsPoint(b.Outer(), orb.Point{2, 1}) {
		t.Errorf("shared-edge midpoint survived on b: %v", b.Outer())
	}

	if len(a.Exposed) == 0 || len(b.Exposed) == 0 {
		t.Fatal("touching footprints have no exposed chains")
	}
	// The shared edge is not exposed on either side.
	for _, chain := range a.Exposed {
		for i := 0; i+1 < len(chain); i++ {
			if chain[i][0] == 2 && chain[i+1][0] == 2 {
				t.Errorf("shared edge emitted as exposed on a: %v", chain)
			}
		}
	}
}

func TestRemoveCollinearHorizontal(t *testing.T) {
	// (2,4) lies mid-edge between (4,4) and (0,4).
	p := orb.Polygon{ring(
		[2]float64{0, 0}, [2]float64{4, 0}, [2]float64{4, 4},
		[2]float64{2, 4}, [2]float64{0, 4}, [2]float64{0, 0},
	)}
	got := removeCollinearHorizontal(p)
	if containsPoint(got[0], orb.Point{2, 4}) {
		t.Errorf("collinear point survived: %v", got[0])
	}
}

func TestRemoveCollinearHorizontalAcrossClosure(t *testing.T) {
	// The ring starts on a collinear point: (2,0) is mid-edge between
	// (0,0) and (4,0), so only the cyclic wrap-around scan can see it.
	p := orb.Polygon{ring(
		[2]float64{2, 0}, [2]float64{4, 0}, [2]float64{4, 4},
		[2]float64{0, 4}, [2]float64{0, 0}, [2]float64{2, 0},
	)}
	got := removeCollinearHorizontal(p)
	if containsPoint(got[0], orb.Point{2, 0}) {
		t.Errorf("collinear start vertex survived the cyclic scan: %v", got[0])
	}
}

func TestDropPointsLinework(t *testing.T) {
	lw := linework{chains: [][]orb.Point{
		pts([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0}),
		pts([2]float64{5, 5}, [2]float64{6, 5}),
	}}
	got := dropPointsLinework(lw, pts([2]float64{1, 0}, [2]float64{6, 5}))
	if len(got.chains) != 1 {
		t.Fatalf("chains = %d, want 1 (single-point chain discarded)", len(got.chains))
	}
	want := pts([2]float64{0, 0}, [2]float64{2, 0})
	if !coordsEqual(got.chains[0], want) {
		t.Errorf("chain = %v, want %v", got.chains[0], want)
	}
}
