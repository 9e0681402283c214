// Package motion eases a live value toward a target once per frame.
package motion

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// DefaultLerpFactor is the fraction of the remaining distance covered per
// frame by the default easer.
const DefaultLerpFactor = 0.1

// Easer moves live one frame closer to target.
type Easer interface {
	Ease(live, target float64) float64
}

// Lerp covers a fixed fraction of the remaining distance every frame. It
// approaches the target exponentially and never overshoots for factors in
// (0, 1].
type Lerp struct {
	Factor float64
}

// NewLerp returns a Lerp easer, falling back to DefaultLerpFactor when factor
// is outside (0, 1].
func NewLerp(factor float64) Lerp {
	if factor <= 0 || factor > 1 {
		factor = DefaultLerpFactor
	}
	return Lerp{Factor: factor}
}

func (l Lerp) Ease(live, target float64) float64 {
	return live + (target-live)*l.Factor
}

// FramesToConverge returns how many Lerp frames it takes to bring a gap of
// distance below eps.
func FramesToConverge(factor, distance, eps float64) int {
	distance = math.Abs(distance)
	if distance < eps {
		return 0
	}
	if factor >= 1 {
		return 1
	}
	return int(math.Ceil(math.Log(eps/distance) / math.Log(1-factor)))
}

// Spring eases with a damped harmonic oscillator. Velocity carries over
// between frames, so a spring keeps its momentum when the target moves
// mid-flight.
type Spring struct {
	spring harmonica.Spring
	vel    float64
}

// NewSpring creates a Spring stepping at fps. A damping ratio of 1 is
// critically damped; below 1 the carousel overshoots and wobbles.
func NewSpring(fps int, frequency, damping float64) *Spring {
	return &Spring{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (s *Spring) Ease(live, target float64) float64 {
	pos, vel := s.spring.Update(live, s.vel, target)
	s.vel = vel
	return pos
}
