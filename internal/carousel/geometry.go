// Package carousel positions covers on a wrap-around ring and tracks which
// one the scroll offset has settled on.
package carousel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned for rings with no items or no extent.
var ErrInvalidGeometry = errors.New("invalid carousel geometry")

// Geometry describes a ring of Count items, each ItemExtent long (cover size
// plus gap).
type Geometry struct {
	ItemExtent float64
	Count      int
}

// NewGeometry builds a Geometry from the cover size, the gap between covers
// and the number of items.
func NewGeometry(coverSize, gap float64, count int) (Geometry, error) {
	g := Geometry{ItemExtent: coverSize + gap, Count: count}
	if count < 1 {
		return Geometry{}, fmt.Errorf("%w: %d items", ErrInvalidGeometry, count)
	}
	if g.ItemExtent <= 0 || math.IsNaN(g.ItemExtent) || math.IsInf(g.ItemExtent, 0) {
		return Geometry{}, fmt.Errorf("%w: item extent %v", ErrInvalidGeometry, g.ItemExtent)
	}
	return g, nil
}

// RingExtent is the length of one full turn of the ring.
func (g Geometry) RingExtent() float64 {
	return g.ItemExtent * float64(g.Count)
}

// Position returns where item index is drawn for the given live offset. The
// result always lies in [-ItemExtent, RingExtent()-ItemExtent), so exactly
// one item sits nearest slot zero.
func (g Geometry) Position(index int, live float64) float64 {
	ring := g.RingExtent()
	base := float64(index) * g.ItemExtent
	adjusted := -g.ItemExtent + floorMod(base-live, ring)
	if adjusted < -g.ItemExtent {
		adjusted += ring
	}
	return adjusted
}

// Positions returns Position for every item of the ring.
func (g Geometry) Positions(live float64) []float64 {
	out := make([]float64, g.Count)
	for i := range out {
		out[i] = g.Position(i, live)
	}
	return out
}

// ClosestStep returns the unwrapped item step nearest to offset. Halves round
// up, so 2.5 items lands on step 3 and -2.5 on step -2.
func (g Geometry) ClosestStep(offset float64) int {
	return int(math.Floor(offset/g.ItemExtent + 0.5))
}

// ClosestIndex returns the ring index nearest to offset.
func (g Geometry) ClosestIndex(offset float64) int {
	return g.Wrap(g.ClosestStep(offset))
}

// SnapOffset returns the offset of the item nearest to offset.
func (g Geometry) SnapOffset(offset float64) float64 {
	return float64(g.ClosestStep(offset)) * g.ItemExtent
}

// Wrap reduces step to a ring index in [0, Count).
func (g Geometry) Wrap(step int) int {
	return ((step % g.Count) + g.Count) % g.Count
}

// Neighbors returns the ring indices before and after index.
func (g Geometry) Neighbors(index int) (prev, next int) {
	return g.Wrap(index - 1), g.Wrap(index + 1)
}

// floorMod is x mod m normalized into [0, m).
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	if r >= m {
		r = 0
	}
	return r
}
