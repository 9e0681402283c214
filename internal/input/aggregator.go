// Package input turns wheel and drag gestures into carousel targets.
package input

import (
	"math"
	"time"

	"github.com/olivier-w/coverflow/internal/carousel"
	"go.uber.org/zap"
)

// Defaults for wheel gesture detection.
const (
	DefaultIdleDelay  = 250 * time.Millisecond
	DefaultThreshold  = 5.0
	DefaultWheelScale = 1.0
)

// State is the gesture currently in progress.
type State int

const (
	Idle State = iota
	Wheeling
	Dragging
)

func (s State) String() string {
	switch s {
	case Wheeling:
		return "wheeling"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Options tunes an Aggregator.
type Options struct {
	// IdleDelay is how long the wheel must be quiet before the gesture ends.
	IdleDelay time.Duration
	// Threshold is the wheel delta magnitude under which a quiet wheel is
	// treated as finished rather than still coasting.
	Threshold float64
	// WheelScale multiplies every wheel delta before it reaches the target.
	WheelScale float64
}

func (o Options) withDefaults() Options {
	if o.IdleDelay <= 0 {
		o.IdleDelay = DefaultIdleDelay
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.WheelScale == 0 {
		o.WheelScale = DefaultWheelScale
	}
	return o
}

// Aggregator accumulates wheel and drag deltas into the carousel target and
// snaps it when a gesture ends. Wheel and drag are mutually exclusive: wheel
// events during a drag are dropped, and a drag that starts mid-wheel takes
// over and cancels the pending wheel idle check.
//
// Timers are owned by the caller: Wheel hands back a sequence number, and the
// caller reports it to WheelIdle once IdleDelay has elapsed.
type Aggregator struct {
	c    *carousel.Carousel
	opts Options
	log  *zap.Logger

	state     State
	seq       uint64
	lastDelta float64

	dragStartStep int
	dragNet       float64
}

// New creates an Aggregator driving c.
func New(c *carousel.Carousel, opts Options, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{c: c, opts: opts.withDefaults(), log: log}
}

// State returns the gesture in progress.
func (a *Aggregator) State() State { return a.state }

// IdleDelay returns the quiet period that ends a wheel gesture.
func (a *Aggregator) IdleDelay() time.Duration { return a.opts.IdleDelay }

// Wheel adds a wheel delta to the target. It returns the idle sequence number
// to arm a timer with; ok is false when the event was dropped.
func (a *Aggregator) Wheel(delta float64) (seq uint64, ok bool) {
	if a.state == Dragging {
		a.log.Debug("wheel dropped during drag", zap.Float64("delta", delta))
		return 0, false
	}
	a.state = Wheeling
	a.lastDelta = math.Abs(delta)
	a.c.Nudge(delta * a.opts.WheelScale)
	a.seq++
	return a.seq, true
}

// WheelIdle is called when the idle timer armed for seq fires. Stale
// sequences are ignored. If the last delta was small the gesture ends and the
// target snaps to the nearest item. Otherwise the wheel may still be coasting:
// the recorded delta is cleared and rearm is true, so the caller should arm one
// more timer for the same seq.
func (a *Aggregator) WheelIdle(seq uint64) (rearm bool) {
	if a.state != Wheeling || seq != a.seq {
		return false
	}
	if a.lastDelta >= a.opts.Threshold {
		a.lastDelta = 0
		return true
	}
	a.state = Idle
	a.c.SnapToNearest()
	a.log.Debug("wheel gesture ended", zap.Int("index", a.c.Active()))
	return false
}

// BeginDrag starts a drag gesture. A wheel gesture in progress is abandoned.
func (a *Aggregator) BeginDrag() {
	if a.state == Wheeling {
		a.seq++
	}
	a.state = Dragging
	a.dragStartStep = a.c.TargetStep()
	a.dragNet = 0
}

// DragMove applies a drag delta 1:1 with inverted sign: dragging the covers
// up moves the carousel forward.
func (a *Aggregator) DragMove(delta float64) {
	if a.state != Dragging {
		return
	}
	a.dragNet += delta
	a.c.Nudge(-delta)
}

// EndDrag releases the drag. The target snaps exactly one item forward or
// back from where the drag began, depending on the sign of the net drag, or
// back to the start item when the net drag is zero. It returns the chosen
// direction.
func (a *Aggregator) EndDrag() int {
	if a.state != Dragging {
		return 0
	}
	a.state = Idle

	dir := 0
	switch {
	case a.dragNet < 0:
		dir = 1
	case a.dragNet > 0:
		dir = -1
	}
	a.c.SnapToStep(a.dragStartStep + dir)
	a.log.Debug("drag released",
		zap.Float64("net", a.dragNet),
		zap.Int("direction", dir),
		zap.Int("index", a.c.Active()),
	)
	return dir
}
