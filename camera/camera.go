// Package camera maps between screen pixels and the toroidal world.
package camera

import "math"

// Camera controls the viewport into the simulation world.
// Supports pan and zoom; the world repeats in every direction.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Screen pixels per world unit
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World dimensions (grid size)
	WorldW, WorldH float32

	// Zoom constraints; MinZoom fits the whole world on screen
	MinZoom, MaxZoom float32
}

// Rect is a screen-space rectangle.
type Rect struct {
	X, Y, W, H float32
}

// New creates a camera centered on the world, zoomed to fit it.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
	}
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.Reset()
	return c
}

// fitZoom is the largest zoom at which the whole world is visible.
func (c *Camera) fitZoom() float32 {
	zx := c.ViewportW / c.WorldW
	zy := c.ViewportH / c.WorldH
	if zy < zx {
		return zy
	}
	return zx
}

// WorldToScreen converts world coordinates to screen coordinates using the
// copy of the point nearest the camera center.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)
	return c.ViewportW/2 + dx*c.Zoom, c.ViewportH/2 + dy*c.Zoom
}

// ScreenToWorld converts screen coordinates to wrapped world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom
	return mod(c.X+dx, c.WorldW), mod(c.Y+dy, c.WorldH)
}

// ScreenToWorldUnwrapped converts screen coordinates to world coordinates
// without wrapping. Two points converted this way keep their screen-space
// ordering, which is what rectangle selection needs.
func (c *Camera) ScreenToWorldUnwrapped(sx, sy float32) (wx, wy float32) {
	return c.X + (sx-c.ViewportW/2)/c.Zoom, c.Y + (sy-c.ViewportH/2)/c.Zoom
}

// Tiles returns the screen rectangles covered by copies of the world that
// intersect the viewport. At fit zoom with a centered camera this is a
// single rectangle.
func (c *Camera) Tiles() []Rect {
	tw := c.WorldW * c.Zoom
	th := c.WorldH * c.Zoom

	// Screen position of world origin for the copy containing the center
	ox := c.ViewportW/2 - c.X*c.Zoom
	oy := c.ViewportH/2 - c.Y*c.Zoom
	// Step back to the first copy touching the viewport
	for ox > 0 {
		ox -= tw
	}
	for oy > 0 {
		oy -= th
	}

	var tiles []Rect
	for y := oy; y < c.ViewportH; y += th {
		if y+th <= 0 {
			continue
		}
		for x := ox; x < c.ViewportW; x += tw {
			if x+tw <= 0 {
				continue
			}
			tiles = append(tiles, Rect{X: x, Y: y, W: tw, H: th})
		}
	}
	return tiles
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)

	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(dx) <= halfW && absf(dy) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	ratio := c.Zoom / c.MinZoom
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.SetZoom(c.MinZoom * ratio)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X = mod(c.X+dx/c.Zoom, c.WorldW)
	c.Y = mod(c.Y+dy/c.Zoom, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomAt multiplies the zoom by factor, keeping the world point under
// (sx, sy) fixed on screen.
func (c *Camera) ZoomAt(factor, sx, sy float32) {
	wx, wy := c.ScreenToWorldUnwrapped(sx, sy)
	c.SetZoom(c.Zoom * factor)
	c.X = mod(wx-(sx-c.ViewportW/2)/c.Zoom, c.WorldW)
	c.Y = mod(wy-(sy-c.ViewportH/2)/c.Zoom, c.WorldH)
}

// Reset returns the camera to the world center at fit zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	if r >= m {
		r = 0
	}
	return r
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
