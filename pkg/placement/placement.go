// Package placement positions a floating element next to an anchor.
package placement

import "math"

// Side is where the floating element sits relative to the anchor.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
	Left   Side = "left"
	Right  Side = "right"
)

// AllSides is the candidate order used by AutoPlacement.
var AllSides = []Side{Top, Bottom, Left, Right}

// Rect is an axis-aligned box in viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size is the measured size of the floating element.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is the computed top-left corner of the floating element.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is passed through the middleware chain.
type State struct {
	Anchor   Rect
	Floating Size
	Viewport Rect
	Side     Side
	X, Y     float64
}

// Middleware adjusts the computed position.
type Middleware func(*State)

// Result is the final position and the side that was used.
type Result struct {
	Point
	Side Side
}

// ComputePosition places floating below the anchor, then applies the middleware in order.
func ComputePosition(anchor Rect, floating Size, viewport Rect, middleware ...Middleware) Result {
	s := &State{Anchor: anchor, Floating: floating, Viewport: viewport, Side: Bottom}
	s.X, s.Y = coords(anchor, floating, Bottom)
	for _, mw := range middleware {
		mw(s)
	}
	return Result{Point: Point{X: s.X, Y: s.Y}, Side: s.Side}
}

// coords centres floating on the anchor edge of the given side.
func coords(anchor Rect, floating Size, side Side) (x, y float64) {
	cx := anchor.X + anchor.Width/2 - floating.Width/2
	cy := anchor.Y + anchor.Height/2 - floating.Height/2
	switch side {
	case Top:
		return cx, anchor.Y - floating.Height
	case Left:
		return anchor.X - floating.Width, cy
	case Right:
		return anchor.X + anchor.Width, cy
	default:
		return cx, anchor.Y + anchor.Height
	}
}

// overflow returns how far a box at (x, y) sticks out of the viewport on each side.
func overflow(x, y float64, floating Size, viewport Rect) (top, bottom, left, right float64) {
	top = math.Max(0, viewport.Y-y)
	bottom = math.Max(0, y+floating.Height-(viewport.Y+viewport.Height))
	left = math.Max(0, viewport.X-x)
	right = math.Max(0, x+floating.Width-(viewport.X+viewport.Width))
	return
}

// AutoOptions configures AutoPlacement.
type AutoOptions struct {
	// AllowedPlacements restricts the candidates. Empty means AllSides.
	AllowedPlacements []Side
	// CrossAxis also counts overflow along the alignment axis.
	CrossAxis bool
}

// AutoPlacement picks the candidate side with the least overflow. Among sides
// that overflow equally, the one leaving the most room along its main axis
// wins, then the earlier candidate.
func AutoPlacement(opts AutoOptions) Middleware {
	return func(s *State) {
		candidates := opts.AllowedPlacements
		if len(candidates) == 0 {
			candidates = AllSides
		}
		best := Side("")
		bestOverflow, bestRoom := math.Inf(1), math.Inf(-1)
		for _, side := range candidates {
			x, y := coords(s.Anchor, s.Floating, side)
			top, bottom, left, right := overflow(x, y, s.Floating, s.Viewport)
			var main, cross float64
			if side == Top || side == Bottom {
				main, cross = top+bottom, left+right
			} else {
				main, cross = left+right, top+bottom
			}
			total := main
			if opts.CrossAxis {
				total += cross
			}
			r := room(x, y, s.Floating, s.Viewport, side)
			if total < bestOverflow || (total == bestOverflow && r > bestRoom) {
				best, bestOverflow, bestRoom = side, total, r
			}
		}
		if best == "" {
			return
		}
		s.Side = best
		s.X, s.Y = coords(s.Anchor, s.Floating, best)
	}
}

// room is the distance between a box at (x, y) and the viewport edge it faces.
func room(x, y float64, floating Size, viewport Rect, side Side) float64 {
	switch side {
	case Top:
		return y - viewport.Y
	case Left:
		return x - viewport.X
	case Right:
		return viewport.X + viewport.Width - (x + floating.Width)
	default:
		return viewport.Y + viewport.Height - (y + floating.Height)
	}
}

// Shift slides the floating element along its alignment axis to keep it
// padding away from the viewport edges.
func Shift(padding float64) Middleware {
	return func(s *State) {
		if s.Side == Top || s.Side == Bottom {
			s.X = clamp(s.X, s.Viewport.X+padding, s.Viewport.X+s.Viewport.Width-padding-s.Floating.Width)
			return
		}
		s.Y = clamp(s.Y, s.Viewport.Y+padding, s.Viewport.Y+s.Viewport.Height-padding-s.Floating.Height)
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
