package input

import (
	"testing"

	"github.com/olivier-w/coverflow/internal/carousel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAggregator(t *testing.T) (*Aggregator, *carousel.Carousel) {
	t.Helper()
	g, err := carousel.NewGeometry(100, 0, 4)
	require.NoError(t, err)
	c := carousel.New(g)
	return New(c, Options{}, zap.NewNop()), c
}

func TestDefaults(t *testing.T) {
	a, _ := newAggregator(t)
	assert.Equal(t, DefaultIdleDelay, a.IdleDelay())
	assert.Equal(t, Idle, a.State())
}

func TestWheelAccumulatesAndSnapsWhenQuiet(t *testing.T) {
	a, c := newAggregator(t)

	var seq uint64
	for _, d := range []float64{3, 3, 4} {
		var ok bool
		seq, ok = a.Wheel(d)
		require.True(t, ok)
	}
	assert.Equal(t, Wheeling, a.State())
	assert.Equal(t, 10.0, c.Target())

	rearm := a.WheelIdle(seq)
	assert.False(t, rearm)
	assert.Equal(t, Idle, a.State())
	assert.Equal(t, 0.0, c.Target())
}

func TestWheelSnapsToNearestItem(t *testing.T) {
	a, c := newAggregator(t)
	c.SetTarget(248)
	seq, _ := a.Wheel(2)
	a.WheelIdle(seq)
	assert.Equal(t, 300.0, c.Target())
	assert.Equal(t, 3, c.Active())
}

func TestStaleWheelIdleIgnored(t *testing.T) {
	a, c := newAggregator(t)
	first, _ := a.Wheel(1)
	a.Wheel(1)

	assert.False(t, a.WheelIdle(first))
	assert.Equal(t, Wheeling, a.State())
	assert.Equal(t, 2.0, c.Target())
}

func TestWheelCoastingTailRearmsOnce(t *testing.T) {
	a, c := newAggregator(t)
	seq, _ := a.Wheel(40)

	assert.True(t, a.WheelIdle(seq), "large last delta should rearm")
	assert.Equal(t, Wheeling, a.State())
	assert.Equal(t, 40.0, c.Target())

	assert.False(t, a.WheelIdle(seq))
	assert.Equal(t, Idle, a.State())
	assert.Equal(t, 0.0, c.Target())
}

func TestWheelScale(t *testing.T) {
	g, err := carousel.NewGeometry(100, 0, 4)
	require.NoError(t, err)
	c := carousel.New(g)
	a := New(c, Options{WheelScale: -2}, nil)
	a.Wheel(3)
	assert.Equal(t, -6.0, c.Target())
}

func TestDragReleaseAdvancesOneItem(t *testing.T) {
	a, c := newAggregator(t)

	a.BeginDrag()
	assert.Equal(t, Dragging, a.State())
	a.DragMove(-30)
	a.DragMove(-250)
	assert.Equal(t, 280.0, c.Target())

	dir := a.EndDrag()
	assert.Equal(t, 1, dir)
	assert.Equal(t, Idle, a.State())
	assert.Equal(t, 100.0, c.Target(), "release moves exactly one item")
	assert.Equal(t, 1, c.Active())
}

func TestDragReleaseRetreats(t *testing.T) {
	a, c := newAggregator(t)
	a.BeginDrag()
	a.DragMove(10)
	assert.Equal(t, -1, a.EndDrag())
	assert.Equal(t, -100.0, c.Target())
	assert.Equal(t, 3, c.Active())
}

func TestDragWithoutNetMovementReturnsHome(t *testing.T) {
	a, c := newAggregator(t)
	a.BeginDrag()
	a.DragMove(20)
	a.DragMove(-20)
	assert.Equal(t, 0, a.EndDrag())
	assert.Equal(t, 0.0, c.Target())
}

func TestWheelDroppedWhileDragging(t *testing.T) {
	a, c := newAggregator(t)
	a.BeginDrag()
	a.DragMove(-10)

	_, ok := a.Wheel(50)
	assert.False(t, ok)
	assert.Equal(t, 10.0, c.Target())
	assert.Equal(t, Dragging, a.State())
}

func TestDragTakesOverWheel(t *testing.T) {
	a, c := newAggregator(t)
	seq, _ := a.Wheel(3)

	a.BeginDrag()
	assert.False(t, a.WheelIdle(seq), "pending wheel idle must be cancelled")
	assert.Equal(t, Dragging, a.State())

	a.DragMove(-1)
	a.EndDrag()
	assert.Equal(t, 100.0, c.Target())
}

func TestDragEventsIgnoredWhenNotDragging(t *testing.T) {
	a, c := newAggregator(t)
	a.DragMove(-50)
	assert.Equal(t, 0.0, c.Target())
	assert.Equal(t, 0, a.EndDrag())
}
