package carousel

import (
	"math"

	"github.com/olivier-w/coverflow/internal/motion"
)

// SnapPolicy selects which offset the active index is derived from.
type SnapPolicy int

const (
	// SnapTarget follows the offset the carousel is heading to, so the
	// active track switches as soon as a gesture commits.
	SnapTarget SnapPolicy = iota
	// SnapLive follows the offset currently on screen.
	SnapLive
)

// ParseSnapPolicy maps "target" and "live" to a SnapPolicy.
func ParseSnapPolicy(s string) (SnapPolicy, bool) {
	switch s {
	case "target", "":
		return SnapTarget, true
	case "live":
		return SnapLive, true
	}
	return SnapTarget, false
}

func (p SnapPolicy) String() string {
	if p == SnapLive {
		return "live"
	}
	return "target"
}

// Carousel holds the scroll state of the ring. The continuous offsets are the
// only source of truth; the active index is derived from them and change
// notifications fire synchronously from the call that moved it.
//
// A Carousel is not safe for concurrent use.
type Carousel struct {
	geom     Geometry
	live     float64
	target   float64
	active   int
	policy   SnapPolicy
	easer    motion.Easer
	onChange func(prev, next int)
}

// Option configures a Carousel.
type Option func(*Carousel)

// WithEaser sets the per-frame easing. Defaults to motion.NewLerp(0.1).
func WithEaser(e motion.Easer) Option {
	return func(c *Carousel) { c.easer = e }
}

// WithSnapPolicy sets which offset drives the active index.
func WithSnapPolicy(p SnapPolicy) Option {
	return func(c *Carousel) { c.policy = p }
}

// WithStart places the carousel at rest on index.
func WithStart(index int) Option {
	return func(c *Carousel) {
		c.live = float64(index) * c.geom.ItemExtent
		c.target = c.live
	}
}

// New creates a Carousel at rest on item 0.
func New(g Geometry, opts ...Option) *Carousel {
	c := &Carousel{
		geom:  g,
		easer: motion.NewLerp(motion.DefaultLerpFactor),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.active = g.ClosestIndex(c.source())
	return c
}

// OnIndexChanged registers fn to run whenever the active index changes. It
// replaces any previous handler.
func (c *Carousel) OnIndexChanged(fn func(prev, next int)) {
	c.onChange = fn
}

// Geometry returns the ring geometry.
func (c *Carousel) Geometry() Geometry { return c.geom }

// Live returns the offset currently on screen.
func (c *Carousel) Live() float64 { return c.live }

// Target returns the offset the carousel is easing toward.
func (c *Carousel) Target() float64 { return c.target }

// Active returns the ring index of the active item.
func (c *Carousel) Active() int { return c.active }

// TargetStep returns the unwrapped step nearest the target offset.
func (c *Carousel) TargetStep() int {
	return c.geom.ClosestStep(c.target)
}

// Nudge moves the target by delta.
func (c *Carousel) Nudge(delta float64) {
	c.SetTarget(c.target + delta)
}

// SetTarget sets the target offset.
func (c *Carousel) SetTarget(v float64) {
	c.target = v
	c.sync()
}

// SnapToNearest moves the target onto the item nearest to it.
func (c *Carousel) SnapToNearest() {
	c.SetTarget(c.geom.SnapOffset(c.target))
}

// SnapToStep moves the target onto unwrapped step k.
func (c *Carousel) SnapToStep(k int) {
	c.SetTarget(float64(k) * c.geom.ItemExtent)
}

// Advance snaps the target one item forward (dir > 0) or back (dir < 0)
// from the item it is nearest to.
func (c *Carousel) Advance(dir int) {
	switch {
	case dir > 0:
		dir = 1
	case dir < 0:
		dir = -1
	}
	c.SnapToStep(c.TargetStep() + dir)
}

// JumpTo snaps the target onto ring index, taking the shorter way around.
func (c *Carousel) JumpTo(index int) {
	n := c.geom.Count
	from := c.TargetStep()
	delta := c.geom.Wrap(index - from)
	if delta > n/2 {
		delta -= n
	}
	c.SnapToStep(from + delta)
}

// Step advances the live offset by one animation frame.
func (c *Carousel) Step() {
	c.live = c.easer.Ease(c.live, c.target)
	c.sync()
}

// Settle jumps the live offset straight to the target.
func (c *Carousel) Settle() {
	c.live = c.target
	c.sync()
}

// Settled reports whether the live offset is within eps of the target.
func (c *Carousel) Settled(eps float64) bool {
	return math.Abs(c.target-c.live) < eps
}

// Positions returns the draw position of every item at the live offset.
func (c *Carousel) Positions() []float64 {
	return c.geom.Positions(c.live)
}

func (c *Carousel) source() float64 {
	if c.policy == SnapLive {
		return c.live
	}
	return c.target
}

func (c *Carousel) sync() {
	next := c.geom.ClosestIndex(c.source())
	if next == c.active {
		return
	}
	prev := c.active
	c.active = next
	if c.onChange != nil {
		c.onChange(prev, next)
	}
}
