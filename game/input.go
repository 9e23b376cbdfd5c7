package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const controlsLegend = "LMB drag: obstacle | RMB: food | Shift+LMB: inspect | Space: start/pause | A: agents | C: clear trails | R: record | </>: steps | P: perf | wheel/arrows: camera"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.toggleActive()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyA) {
		g.fieldRenderer.ShowAgents = !g.fieldRenderer.ShowAgents
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.sim.ClearField()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.recorder.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}

	g.handleCameraInput()
	g.handleMouse()
}

func (g *Game) toggleActive() {
	active := !g.sim.Active()
	g.sim.SetActive(active)
	slog.Info("simulation active", "active", active, "tick", g.sim.Tick(), "obstacles", len(g.sim.Obstacles()))
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.controls.Resize(int32(w))
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		g.camera.ZoomAt(1+wheel*0.1, m.X, m.Y)
	}

	// Middle-drag pans
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleMouse turns left drags into obstacles and right clicks into food.
// Clicks over the control panel belong to the panel.
func (g *Game) handleMouse() {
	m := rl.GetMousePosition()
	overPanel := g.controls.Contains(m.X, m.Y)

	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !overPanel {
		if shift {
			g.selectAgent(m.X, m.Y)
		} else {
			x, y := g.camera.ScreenToWorldUnwrapped(m.X, m.Y)
			g.drag.begin(x, y)
		}
	}
	if g.drag.active {
		x, y := g.camera.ScreenToWorldUnwrapped(m.X, m.Y)
		g.drag.move(x, y)
		if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
			g.addObstacle(g.drag.finish(float64(g.cfg.Derived.WorldW), float64(g.cfg.Derived.WorldH)))
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) && !overPanel {
		x, y := g.camera.ScreenToWorld(m.X, m.Y)
		g.addFood(float64(x), float64(y))
	}
}

// selectAgent picks the slime nearest the cursor for the inspector.
func (g *Game) selectAgent(sx, sy float32) {
	x, y := g.camera.ScreenToWorld(sx, sy)
	g.agentsBuf = g.sim.Agents(g.agentsBuf)
	// Within 12 screen pixels regardless of zoom
	radius := 12 / float64(g.camera.Zoom)
	if g.inspector.Select(g.agentsBuf, float64(x), float64(y), radius, float64(g.cfg.Derived.WorldW), float64(g.cfg.Derived.WorldH)) {
		i, _ := g.inspector.Selected()
		slog.Debug("slime selected", "index", i)
	}
}
