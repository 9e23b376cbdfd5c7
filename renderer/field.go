// Package renderer draws the simulation with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slime/camera"
	"github.com/pthm-cable/slime/systems"
)

var (
	obstacleColor = rl.White
	foodColor     = rl.NewColor(0, 255, 0, 255)
	agentColor    = rl.NewColor(255, 200, 80, 255)
	dragColor     = rl.NewColor(255, 255, 255, 160)
)

// FieldRenderer draws the pheromone field as a grayscale texture, then
// obstacles, food sources and optionally agents on top.
type FieldRenderer struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	// Gain applied to intensities; 1 matches the plain 0..1 -> 0..255 mapping
	Gain float64

	ShowAgents  bool
	initialized bool
}

// NewFieldRenderer creates a renderer for a w×h grid.
func NewFieldRenderer(w, h int) *FieldRenderer {
	return &FieldRenderer{texW: w, texH: h, Gain: 1}
}

// Init creates the GPU texture (must be called after the raylib window is created).
func (r *FieldRenderer) Init() {
	if r.initialized {
		return
	}
	img := rl.GenImageColor(r.texW, r.texH, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterPoint)
	rl.UnloadImage(img)
	r.initialized = true
}

// UpdateField uploads a field snapshot to the texture.
func (r *FieldRenderer) UpdateField(field []float64) {
	if !r.initialized {
		r.Init()
	}
	if len(field) != r.texW*r.texH {
		return
	}
	r.pixels = FieldPixels(field, r.Gain, r.pixels)
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the field and the scene through cam.
func (r *FieldRenderer) Draw(cam *camera.Camera, obstacles []systems.Obstacle, food []systems.FoodSource, agents []systems.Agent) {
	if !r.initialized {
		return
	}

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	for _, t := range cam.Tiles() {
		dst := rl.Rectangle{X: t.X, Y: t.Y, Width: t.W, Height: t.H}
		rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
	}

	// Obstacles and food are not toroidal, draw them once per tile at their
	// absolute position.
	for _, t := range cam.Tiles() {
		for _, o := range obstacles {
			rl.DrawRectangleRec(rl.Rectangle{
				X:      t.X + float32(o.X)*cam.Zoom,
				Y:      t.Y + float32(o.Y)*cam.Zoom,
				Width:  float32(o.Width) * cam.Zoom,
				Height: float32(o.Height) * cam.Zoom,
			}, obstacleColor)
		}
		for _, f := range food {
			rl.DrawCircleV(rl.Vector2{
				X: t.X + float32(f.X)*cam.Zoom,
				Y: t.Y + float32(f.Y)*cam.Zoom,
			}, float32(f.Radius)*cam.Zoom, foodColor)
		}
	}

	if r.ShowAgents {
		size := cam.Zoom
		if size < 1 {
			size = 1
		}
		for _, a := range agents {
			x, y := float32(a.X), float32(a.Y)
			if !cam.IsVisible(x, y, 1) {
				continue
			}
			sx, sy := cam.WorldToScreen(x, y)
			rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: size, Y: size}, agentColor)
		}
	}
}

// DrawDragPreview outlines an obstacle being dragged out between two screen points.
func DrawDragPreview(x0, y0, x1, y1 float32) {
	x, y := min(x0, x1), min(y0, y1)
	w, h := max(x0, x1)-x, max(y0, y1)-y
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, dragColor)
}

// Unload frees GPU resources.
func (r *FieldRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
