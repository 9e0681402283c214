package carousel

import (
	"testing"

	"github.com/olivier-w/coverflow/internal/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type change struct{ prev, next int }

func newRecorded(t *testing.T, n int, opts ...Option) (*Carousel, *[]change) {
	t.Helper()
	c := New(mustGeometry(t, 100, n), opts...)
	var changes []change
	c.OnIndexChanged(func(prev, next int) {
		changes = append(changes, change{prev, next})
	})
	return c, &changes
}

func TestNewStartsAtRest(t *testing.T) {
	c := New(mustGeometry(t, 100, 4), WithStart(2))
	assert.Equal(t, 2, c.Active())
	assert.Equal(t, 200.0, c.Live())
	assert.Equal(t, 200.0, c.Target())
	assert.True(t, c.Settled(1e-9))
}

func TestTargetPolicyNotifiesOnMutation(t *testing.T) {
	c, changes := newRecorded(t, 4)

	c.Nudge(40)
	assert.Empty(t, *changes)

	c.Nudge(20) // 60 rounds to step 1
	require.Len(t, *changes, 1)
	assert.Equal(t, change{0, 1}, (*changes)[0])

	c.Nudge(5)
	assert.Len(t, *changes, 1, "same index must not notify again")
}

func TestLivePolicyNotifiesFromStep(t *testing.T) {
	c, changes := newRecorded(t, 4, WithSnapPolicy(SnapLive), WithEaser(motion.NewLerp(0.5)))

	c.SetTarget(100)
	assert.Empty(t, *changes)

	c.Step() // live 50, rounds up to step 1
	require.Len(t, *changes, 1)
	assert.Equal(t, change{0, 1}, (*changes)[0])

	for range 10 {
		c.Step()
	}
	assert.Len(t, *changes, 1)
}

func TestSnapToNearest(t *testing.T) {
	c := New(mustGeometry(t, 100, 4))
	c.SetTarget(250)
	c.SnapToNearest()
	assert.Equal(t, 300.0, c.Target())
	assert.Equal(t, 3, c.Active())
}

func TestAdvanceRingClosure(t *testing.T) {
	for start := range 4 {
		c, changes := newRecorded(t, 4, WithStart(start))
		for range 4 {
			c.Advance(1)
		}
		assert.Equal(t, start, c.Active())
		assert.Len(t, *changes, 4)
	}
}

func TestAdvanceInverse(t *testing.T) {
	c := New(mustGeometry(t, 100, 4), WithStart(3))
	c.Advance(1)
	assert.Equal(t, 0, c.Active())
	c.Advance(-1)
	assert.Equal(t, 3, c.Active())
	assert.Equal(t, 300.0, c.Target())
}

func TestAdvanceFromMidGesture(t *testing.T) {
	c := New(mustGeometry(t, 100, 4))
	c.SetTarget(130)
	c.Advance(1)
	assert.Equal(t, 200.0, c.Target())
}

func TestJumpToTakesShortestWay(t *testing.T) {
	c := New(mustGeometry(t, 100, 6))
	c.JumpTo(5)
	assert.Equal(t, -100.0, c.Target())
	assert.Equal(t, 5, c.Active())

	c.JumpTo(2)
	assert.Equal(t, 200.0, c.Target())
}

func TestStepConvergesAndSettles(t *testing.T) {
	c := New(mustGeometry(t, 100, 4))
	c.SetTarget(300)

	frames := motion.FramesToConverge(motion.DefaultLerpFactor, 300, 1e-3)
	for range frames {
		c.Step()
	}
	assert.True(t, c.Settled(1e-3))
	assert.InDelta(t, 300, c.Live(), 1e-3)
}

func TestSettleJumpsLive(t *testing.T) {
	c := New(mustGeometry(t, 100, 4))
	c.SetTarget(-700)
	c.Settle()
	assert.Equal(t, -700.0, c.Live())
	assert.Equal(t, 1, c.Active())
}

func TestHandlerMayMoveCarousel(t *testing.T) {
	c := New(mustGeometry(t, 100, 4))
	calls := 0
	c.OnIndexChanged(func(prev, next int) {
		calls++
		if next == 1 {
			c.Advance(1)
		}
	})
	c.Advance(1)
	assert.Equal(t, 2, c.Active())
	assert.Equal(t, 2, calls)
}

func TestParseSnapPolicy(t *testing.T) {
	p, ok := ParseSnapPolicy("live")
	assert.True(t, ok)
	assert.Equal(t, SnapLive, p)

	p, ok = ParseSnapPolicy("")
	assert.True(t, ok)
	assert.Equal(t, SnapTarget, p)

	_, ok = ParseSnapPolicy("nearest")
	assert.False(t, ok)
	assert.Equal(t, "live", SnapLive.String())
}
