package stock

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	s := NewStock()
	// a and b share the x=1 edge with a sub-tolerance coordinate gap on
	// it; c is a detached square far away.
	s.Add(fp("a", ring(
		[2]float64{0, 0}, [2]float64{0, 1}, [2]float64{1, 1},
		[2]float64{1, 0.05}, [2]float64{1, 0}, [2]float64{0, 0},
	)))
	s.Add(fp("b", ring(
		[2]float64{1, 0}, [2]float64{1, 0.05}, [2]float64{1, 1},
		[2]float64{2, 1}, [2]float64{2, 0}, [2]float64{1, 0},
	)))
	s.Add(fp("c", square(10, 10, 11, 11)))

	report, err := s.Preprocess(0)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Input)
	assert.Equal(t, 3, report.Surviving)
	assert.Equal(t, 0, report.Degenerate)
	assert.Equal(t, 0, report.HoleCascade)
	assert.Len(t, report.Islands, 2)

	a, _ := s.Get("a")
	b, _ := s.Get("b")
	c, _ := s.Get("c")

	// Tolerance satisfied everywhere after the fixpoint.
	for _, f := range []*Footprint{a, b, c} {
		assert.False(t, polygonWithinTol(f.Polygon, DefaultTolerance),
			"%s still has sub-tolerance spacing: %v", f.ID, f.Polygon)
		assert.NoError(t, sfGeometry(f.Polygon).Validate(), "%s invalid after pipeline", f.ID)
		assert.Equal(t, orb.CW, f.Polygon[0].Orientation(), "%s outer ring not clockwise", f.ID)
		assert.NotEmpty(t, f.Island, "%s has no island", f.ID)
		assert.NotEmpty(t, f.Horizontal, "%s has no horizontal polygon", f.ID)
	}

	assert.Equal(t, []string{"b"}, a.Touching)
	assert.Equal(t, []string{"a"}, b.Touching)
	assert.Empty(t, c.Touching)

	// The merged coordinate is gone from both sides of the shared edge.
	assert.NotContains(t, []orb.Point(a.Outer()), orb.Point{1, 0})
	assert.NotContains(t, []orb.Point(b.Outer()), orb.Point{1, 0})

	assert.Equal(t, a.Island, b.Island)
	assert.NotEqual(t, a.Island, c.Island)
	assert.Equal(t, a.Island, report.ModalIsland)
	assert.Equal(t, 2, report.ModalIslandCount)
}

// Running the pipeline on its own output changes nothing: the first run
// already lands every footprint in the tolerance-clean terminal state.
func TestPreprocessIdempotent(t *testing.T) {
	s := NewStock()
	s.Add(fp("a", ring(
		[2]float64{0, 0}, [2]float64{0, 1}, [2]float64{1, 1},
		[2]float64{1, 0.05}, [2]float64{1, 0}, [2]float64{0, 0},
	)))
	s.Add(fp("b", ring(
		[2]float64{1, 0}, [2]float64{1, 0.05}, [2]float64{1, 1},
		[2]float64{2, 1}, [2]float64{2, 0}, [2]float64{1, 0},
	)))
	s.Add(fp("c", square(10, 10, 11, 11)))

	first, err := s.Preprocess(0.1)
	require.NoError(t, err)

	type snapshot struct {
		polygon  orb.Polygon
		touching []string
		island   string
	}
	before := make(map[string]snapshot)
	for _, id := range s.IDs() {
		f, _ := s.Get(id)
		before[id] = snapshot{
			polygon:  f.Polygon.Clone(),
			touching: append([]string(nil), f.Touching...),
			island:   f.Island,
		}
	}

	second, err := s.Preprocess(0.1)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for id, want := range before {
		f, ok := s.Get(id)
		require.True(t, ok, "%s vanished on the second run", id)
		assert.Equal(t, want.polygon, f.Polygon, "%s moved on the second run", id)
		assert.Equal(t, want.touching, f.Touching, "%s touching changed", id)
		assert.Equal(t, want.island, f.Island, "%s island changed", id)
	}
}

func TestPreprocessCountsDrops(t *testing.T) {
	s := NewStock()
	s.Add(fp("tiny", ring(
		[2]float64{0, 0}, [2]float64{0.05, 0}, [2]float64{0.05, 0.05},
		[2]float64{0, 0.05}, [2]float64{0, 0},
	)))
	s.Add(fp("big", square(5, 5, 10, 10)))

	report, err := s.Preprocess(0.1)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Input)
	assert.Equal(t, 1, report.Surviving)
	assert.Equal(t, 1, report.Degenerate)
}

func TestPreprocessRejectsInvalidInput(t *testing.T) {
	s := NewStock()
	s.Add(fp("bow", ring(
		[2]float64{0, 0}, [2]float64{2, 2}, [2]float64{2, 0}, [2]float64{0, 2}, [2]float64{0, 0},
	)))
	_, err := s.Preprocess(0.1)
	require.Error(t, err)
	var invalid *InvalidInputGeometryError
	assert.ErrorAs(t, err, &invalid)
}

func TestPreprocessRejectsOverlap(t *testing.T) {
	s := NewStock()
	s.Add(fp("a", square(0, 0, 2, 2)))
	s.Add(fp("b", square(1, 1, 3, 3)))
	_, err := s.Preprocess(0.1)
	require.Error(t, err)
	var overlap *OverlapError
	assert.ErrorAs(t, err, &overlap)
}

func TestPreprocessShadingExcludedFromModalCount(t *testing.T) {
	s := NewStock()
	s.Add(fp("a", square(0, 0, 1, 1)))
	shade := fp("s1", square(1, 0, 2, 1))
	shade.Shading = true
	s.Add(shade)
	s.Add(fp("b", square(10, 10, 11, 11)))
	s.Add(fp("c", square(11, 10, 12, 11)))

	report, err := s.Preprocess(0.1)
	require.NoError(t, err)

	b, _ := s.Get("b")
	// The a+s1 island holds two footprints but only one counts; the b+c
	// island wins the modal count with two simulated footprints.
	assert.Equal(t, b.Island, report.ModalIsland)
	assert.Equal(t, 2, report.ModalIslandCount)
}
