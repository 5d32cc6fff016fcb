package placement_test

import (
	"testing"

	"github.com/aretw0/loamcal/pkg/placement"
	"github.com/stretchr/testify/assert"
)

var viewport = placement.Rect{X: 0, Y: 0, Width: 1000, Height: 800}

func TestComputePosition_DefaultBottom(t *testing.T) {
	anchor := placement.Rect{X: 100, Y: 100, Width: 200, Height: 50}
	res := placement.ComputePosition(anchor, placement.Size{Width: 100, Height: 40}, viewport)
	assert.Equal(t, placement.Bottom, res.Side)
	assert.Equal(t, placement.Point{X: 150, Y: 150}, res.Point)
}

func TestAutoPlacement(t *testing.T) {
	floating := placement.Size{Width: 300, Height: 300}

	t.Run("picks side with room", func(t *testing.T) {
		nearBottom := placement.Rect{X: 400, Y: 700, Width: 100, Height: 50}
		res := placement.ComputePosition(nearBottom, floating, viewport, placement.AutoPlacement(placement.AutoOptions{}))
		assert.Equal(t, placement.Top, res.Side)
		assert.Equal(t, 400.0, res.Y)
	})

	t.Run("respects allowed placements", func(t *testing.T) {
		leftEdge := placement.Rect{X: 0, Y: 250, Width: 100, Height: 300}
		res := placement.ComputePosition(leftEdge, floating, viewport, placement.AutoPlacement(placement.AutoOptions{
			AllowedPlacements: []placement.Side{placement.Top, placement.Bottom, placement.Right},
		}))
		assert.Equal(t, placement.Right, res.Side)
	})

	t.Run("cross axis overflow counts", func(t *testing.T) {
		// Top fits vertically with more room than right, but overflows on the left.
		narrow := placement.Rect{Width: 500, Height: 800}
		anchor := placement.Rect{X: 0, Y: 480, Width: 40, Height: 100}
		opts := placement.AutoOptions{AllowedPlacements: []placement.Side{placement.Top, placement.Right}}

		res := placement.ComputePosition(anchor, floating, narrow, placement.AutoPlacement(opts))
		assert.Equal(t, placement.Top, res.Side)

		opts.CrossAxis = true
		res = placement.ComputePosition(anchor, floating, narrow, placement.AutoPlacement(opts))
		assert.Equal(t, placement.Right, res.Side)
	})

	t.Run("ties go to the side with most room", func(t *testing.T) {
		// Top, bottom and right all fit; right leaves 580px, bottom 560px, top none.
		anchor := placement.Rect{X: 100, Y: 100, Width: 120, Height: 40}
		small := placement.Size{Width: 200, Height: 100}

		res := placement.ComputePosition(anchor, small, viewport, placement.AutoPlacement(placement.AutoOptions{}))
		assert.Equal(t, placement.Right, res.Side)
		assert.Equal(t, placement.Point{X: 220, Y: 70}, res.Point)

		res = placement.ComputePosition(anchor, small, viewport, placement.AutoPlacement(placement.AutoOptions{
			AllowedPlacements: []placement.Side{placement.Top, placement.Bottom},
		}))
		assert.Equal(t, placement.Bottom, res.Side)
	})
}

func TestShift(t *testing.T) {
	anchor := placement.Rect{X: 950, Y: 100, Width: 50, Height: 20}
	res := placement.ComputePosition(anchor, placement.Size{Width: 200, Height: 100}, viewport, placement.Shift(8))
	assert.Equal(t, placement.Bottom, res.Side)
	assert.Equal(t, 792.0, res.X)
	assert.Equal(t, 120.0, res.Y)

	tooWide := placement.ComputePosition(anchor, placement.Size{Width: 2000, Height: 100}, viewport, placement.Shift(8))
	assert.Equal(t, 8.0, tooWide.X)
}
