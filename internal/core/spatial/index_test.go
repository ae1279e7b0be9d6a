package spatial

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/horde/internal/core/models"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

func linearNearest(pts []Point, q physics.Vec2) float64 {
	best := math.Inf(1)
	for _, p := range pts {
		if d := p.Pos.Distance(q); d < best {
			best = d
		}
	}
	return best
}

func randomPoints(rng *rand.Rand, n int) []Point {
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, Point{
			Handle: models.Handle{Index: uint32(i), Generation: 1},
			Pos:    physics.V2(rng.Float64()*2000-1000, rng.Float64()*2000-1000),
		})
	}
	return pts
}

func TestEmptyIndexHasNoMatch(t *testing.T) {
	idx := New()
	_, ok := idx.Nearest(physics.V2(0, 0))
	assert.False(t, ok)

	idx.Rebuild(nil)
	_, ok = idx.Nearest(physics.V2(1, 1))
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}

func TestSinglePoint(t *testing.T) {
	idx := New()
	h := models.Handle{Index: 3, Generation: 2}
	idx.Rebuild([]Point{{Handle: h, Pos: physics.V2(3, 4)}})

	m, ok := idx.Nearest(physics.V2(0, 0))
	require.True(t, ok)
	assert.Equal(t, h, m.Handle)
	assert.InDelta(t, 5.0, m.Distance, 1e-12, "distance must be euclidean, not squared")
}

func TestNearestMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	idx := New()

	for round := 0; round < 50; round++ {
		pts := randomPoints(rng, 1+rng.IntN(600))
		// duplicates
		for i := 0; i < len(pts)/10; i++ {
			dup := pts[rng.IntN(len(pts))]
			dup.Handle.Index = uint32(len(pts))
			pts = append(pts, dup)
		}
		idx.Rebuild(pts)
		require.Equal(t, len(pts), idx.Len())

		for q := 0; q < 40; q++ {
			query := physics.V2(rng.Float64()*2400-1200, rng.Float64()*2400-1200)
			if q%8 == 0 {
				// coincident with an indexed point
				query = pts[rng.IntN(len(pts))].Pos
			}
			m, ok := idx.Nearest(query)
			require.True(t, ok)
			assert.InDelta(t, linearNearest(pts, query), m.Distance, 1e-9)
			assert.InDelta(t, m.Pos.Distance(query), m.Distance, 1e-9)
		}
	}
}

func TestRebuildReplacesPreviousPoints(t *testing.T) {
	idx := New()
	old := models.Handle{Index: 1, Generation: 1}
	idx.Rebuild([]Point{{Handle: old, Pos: physics.V2(1, 1)}})

	fresh := models.Handle{Index: 2, Generation: 1}
	idx.Rebuild([]Point{{Handle: fresh, Pos: physics.V2(500, 500)}})

	m, ok := idx.Nearest(physics.V2(0, 0))
	require.True(t, ok)
	assert.Equal(t, fresh, m.Handle)
	assert.Equal(t, uint64(2), idx.Stats().Rebuilds)
}

func TestRebuildDoesNotReorderCallerSlice(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pts := randomPoints(rng, 64)
	before := append([]Point(nil), pts...)
	New().Rebuild(pts)
	assert.Equal(t, before, pts)
}
