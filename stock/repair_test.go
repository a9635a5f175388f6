package stock

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ringBounds(r orb.Ring) (minX, minY, maxX, maxY float64) {
	minX, minY = r[0][0], r[0][1]
	maxX, maxY = minX, minY
	for _, c := range r[1:] {
		if c[0] < minX {
			minX = c[0]
		}
		if c[0] > maxX {
			maxX = c[0]
		}
		if c[1] < minY {
			minY = c[1]
		}
		if c[1] > maxY {
			maxY = c[1]
		}
	}
	return
}

// A hole dragged across the exterior is clipped back to the eroded
// interior instead of being dropped.
func TestRepairClipsCrossingHole(t *testing.T) {
	s := NewStock()
	outer := square(0, 0, 4, 4)
	hole := square(3, 1, 5, 3)
	s.Add(fp("a", outer, hole))

	poly := orb.Polygon{outer, hole}
	repaired, err := s.repair("a", poly, outer, nil, 0.1)
	require.NoError(t, err)

	require.Len(t, repaired, 2, "clipped hole missing")
	assert.True(t, coordsEqual(repaired[0], outer), "outer ring changed")

	minX, minY, maxX, maxY := ringBounds(repaired[1])
	assert.InDelta(t, 3.0, minX, 1e-6)
	assert.InDelta(t, 3.9, maxX, 1e-6, "hole not clipped to the eroded exterior")
	assert.InDelta(t, 1.0, minY, 1e-6)
	assert.InDelta(t, 3.0, maxY, 1e-6)
	assert.Equal(t, orb.CCW, repaired[1].Orientation(), "clipped hole not canonically oriented")
}

func TestRepairLeavesConsistentPolygonAlone(t *testing.T) {
	s := NewStock()
	outer := square(0, 0, 10, 10)
	hole := square(2, 2, 8, 8)
	s.Add(fp("a", outer, hole))

	poly := orb.Polygon{outer, hole}
	repaired, err := s.repair("a", poly, outer, nil, 0.1)
	require.NoError(t, err)
	require.Len(t, repaired, 2)
	assert.True(t, coordsEqual(repaired[0], outer))
	assert.True(t, coordsEqual(repaired[1], hole))
}

// A hole pushed clear of the eroded exterior disappears, and the footprints
// nested inside it go with it.
func TestRepairDropsEscapedHoleWithCascade(t *testing.T) {
	s := NewStock()
	outer := square(0, 0, 4, 4)
	// The hole overlaps only the erosion band of the exterior, so after
	// eroding by the tolerance nothing of it remains inside.
	hole := square(3.95, 1, 6, 3)
	s.Add(fp("a", outer, hole))
	s.Add(fp("nested", square(4.5, 1.5, 5.5, 2.5)))
	s.holeContains = map[string][][]string{"a": {{"nested"}}}

	poly := orb.Polygon{outer, hole}
	repaired, err := s.repair("a", poly, outer, nil, 0.1)
	require.NoError(t, err)

	require.Len(t, repaired, 1, "escaped hole kept")
	_, ok := s.Get("nested")
	assert.False(t, ok, "footprint nested in a removed hole survived")

	dropped := s.Dropped()
	require.Len(t, dropped, 1)
	assert.Equal(t, DropHoleCascade, dropped[0].Reason)
}

func TestRemoveContainedIn(t *testing.T) {
	s := NewStock()
	s.Add(fp("a", square(0, 0, 10, 10), square(2, 2, 8, 8)))
	s.Add(fp("b", square(2, 2, 5, 5)))
	require.NoError(t, s.BuildTouching())
	require.NoError(t, s.buildHoleContainment())

	// A shrunk hole no longer containing b leaves it alone.
	require.NoError(t, s.removeContainedIn(square(6, 6, 8, 8), []string{"b"}))
	_, ok := s.Get("b")
	assert.True(t, ok, "b dropped by a hole that does not contain it")

	// The original hole does contain b.
	require.NoError(t, s.removeContainedIn(square(2, 2, 8, 8), []string{"b"}))
	_, ok = s.Get("b")
	assert.False(t, ok)
}

func TestCascadeRemove(t *testing.T) {
	s := NewStock()
	// a contains b in its hole; b contains c in its own hole. Removing b
	// must take c with it.
	s.Add(fp("a", square(0, 0, 20, 20), square(2, 2, 18, 18)))
	s.Add(fp("b", square(2, 2, 18, 10), square(4, 4, 16, 8)))
	s.Add(fp("c", square(4, 4, 10, 8)))

	require.NoError(t, s.BuildTouching())
	require.NoError(t, s.buildHoleContainment())
	require.Equal(t, []string{"c"}, s.containedIDs("b"))

	s.cascadeRemove([]string{"b"})

	for _, id := range []string{"b", "c"} {
		if _, ok := s.Get(id); ok {
			t.Errorf("%s survived the cascade", id)
		}
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("a removed by a cascade that should not reach it")
	}
	for _, d := range s.Dropped() {
		if d.Reason != DropHoleCascade {
			t.Errorf("%s dropped as %v, want hole-cascade", d.ID, d.Reason)
		}
	}
}
