package systems

import "math"

// Obstacle is an axis-aligned rectangle slimes steer away from.
type Obstacle struct {
	X, Y          float64 // top-left corner
	Width, Height float64
}

// ObstacleFromCorners builds the rectangle spanned by two drag points,
// in either order.
func ObstacleFromCorners(x0, y0, x1, y1 float64) Obstacle {
	return Obstacle{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}

// IsWithin reports whether (x, y) lies strictly inside the rectangle grown by
// radius on every side. Each axis is tested independently, so the corners of
// the grown region are square rather than rounded.
func (o Obstacle) IsWithin(x, y, radius float64) bool {
	return o.X-radius < x && x < o.X+o.Width+radius &&
		o.Y-radius < y && y < o.Y+o.Height+radius
}

// FoodSource is a fixed attractor. Radius is its drawn size; slimes detect
// it from their sensor distance.
type FoodSource struct {
	X, Y   float64
	Radius float64
}

// InRange reports whether (x, y) is strictly closer than dist to the source.
func (f FoodSource) InRange(x, y, dist float64) bool {
	return distanceSq(x, y, f.X, f.Y) < dist*dist
}
