package game

import (
	"math"

	"github.com/pthm-cable/slime/systems"
)

// dragState tracks an obstacle being dragged out with the mouse.
// Points are unwrapped world coordinates.
type dragState struct {
	active         bool
	startX, startY float32
	endX, endY     float32
}

func (d *dragState) begin(x, y float32) {
	d.active = true
	d.startX, d.startY = x, y
	d.endX, d.endY = x, y
}

func (d *dragState) move(x, y float32) {
	d.endX, d.endY = x, y
}

// finish ends the drag and returns the obstacle it describes.
func (d *dragState) finish(worldW, worldH float64) systems.Obstacle {
	d.active = false
	return dragObstacle(
		float64(d.startX), float64(d.startY),
		float64(d.endX), float64(d.endY),
		worldW, worldH,
	)
}

// dragObstacle normalises a drag between two unwrapped world points into an
// obstacle whose top-left corner lies inside the world. Obstacles are not
// toroidal, so a drag across the seam keeps its size and may extend past the
// far edge.
func dragObstacle(x0, y0, x1, y1, worldW, worldH float64) systems.Obstacle {
	o := systems.ObstacleFromCorners(x0, y0, x1, y1)
	shiftX := math.Floor(o.X/worldW) * worldW
	shiftY := math.Floor(o.Y/worldH) * worldH
	o.X -= shiftX
	o.Y -= shiftY
	return o
}
