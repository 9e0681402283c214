package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGeometry(t *testing.T, item float64, n int) Geometry {
	t.Helper()
	g, err := NewGeometry(item, 0, n)
	require.NoError(t, err)
	return g
}

func TestNewGeometryRejectsDegenerateRings(t *testing.T) {
	_, err := NewGeometry(100, 20, 0)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = NewGeometry(0, 0, 4)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	g, err := NewGeometry(160, 40, 4)
	require.NoError(t, err)
	assert.Equal(t, 200.0, g.ItemExtent)
	assert.Equal(t, 800.0, g.RingExtent())
}

func TestPositionStaysInWindow(t *testing.T) {
	g := mustGeometry(t, 100, 4)
	offsets := []float64{0, 1, 99.5, 250, 400, 1e6 + 0.25, -1, -250, -399.999, -1e6 - 3}
	for _, live := range offsets {
		for i := range g.Count {
			p := g.Position(i, live)
			assert.GreaterOrEqual(t, p, -g.ItemExtent, "index %d live %v", i, live)
			assert.Less(t, p, g.RingExtent()-g.ItemExtent, "index %d live %v", i, live)
		}
	}
}

func TestPositionAtRest(t *testing.T) {
	g := mustGeometry(t, 100, 4)
	assert.Equal(t, []float64{-100, 0, 100, 200}, g.Positions(0))
	// One item forward: item 1 takes slot -100, item 0 wraps to the bottom.
	assert.Equal(t, []float64{200, -100, 0, 100}, g.Positions(100))
	assert.Equal(t, []float64{0, 100, 200, -100}, g.Positions(-100))
}

func TestPositionsAreDistinct(t *testing.T) {
	g := mustGeometry(t, 100, 5)
	for _, live := range []float64{0, 37.5, -812.25} {
		seen := map[float64]bool{}
		for _, p := range g.Positions(live) {
			assert.False(t, seen[p], "duplicate position %v at live %v", p, live)
			seen[p] = true
		}
	}
}

func TestClosestIndexOfExactSteps(t *testing.T) {
	g := mustGeometry(t, 100, 4)
	for k := -9; k <= 9; k++ {
		want := ((k % 4) + 4) % 4
		assert.Equal(t, want, g.ClosestIndex(float64(k)*g.ItemExtent), "k=%d", k)
	}
}

func TestClosestRoundsHalfUp(t *testing.T) {
	g := mustGeometry(t, 100, 4)
	assert.Equal(t, 3, g.ClosestStep(250))
	assert.Equal(t, 3, g.ClosestIndex(250))
	assert.Equal(t, 300.0, g.SnapOffset(250))
	assert.Equal(t, -2, g.ClosestStep(-250))
	assert.Equal(t, 2, g.ClosestStep(249.9))
}

func TestNeighborsWrap(t *testing.T) {
	g := mustGeometry(t, 100, 4)
	prev, next := g.Neighbors(0)
	assert.Equal(t, 3, prev)
	assert.Equal(t, 1, next)

	prev, next = g.Neighbors(3)
	assert.Equal(t, 2, prev)
	assert.Equal(t, 0, next)

	single := mustGeometry(t, 100, 1)
	prev, next = single.Neighbors(0)
	assert.Equal(t, 0, prev)
	assert.Equal(t, 0, next)
}
