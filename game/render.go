package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slime/inspector"
	"github.com/pthm-cable/slime/renderer"
	"github.com/pthm-cable/slime/ui"
)

// Draw renders the current frame and hands it to the recorder.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	g.fieldBuf = g.sim.FieldSnapshot(g.fieldBuf)
	g.agentsBuf = g.sim.Agents(g.agentsBuf)
	g.fieldRenderer.UpdateField(g.fieldBuf)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.fieldRenderer.Draw(g.camera, g.sim.Obstacles(), g.sim.Food(), g.agentsBuf)

	if g.drag.active {
		x0, y0 := g.camera.WorldToScreen(g.drag.startX, g.drag.startY)
		x1, y1 := g.camera.WorldToScreen(g.drag.endX, g.drag.endY)
		renderer.DrawDragPreview(x0, y0, x1, y1)
	}

	g.drawInspector()
	g.drawUI()

	rl.EndDrawing()

	// Capture after EndDrawing so the frame is complete
	g.recorder.Capture()
}

// drawUI renders the HUD, perf panel and control panel.
func (g *Game) drawUI() {
	g.hud.Draw(ui.HUDData{
		Title:     "Slime",
		Agents:    len(g.agentsBuf),
		Obstacles: len(g.sim.Obstacles()),
		Food:      len(g.sim.Food()),
		Workers:   g.sim.Workers(),
		Tick:      g.sim.Tick(),
		Steps:     g.stepsPerUpdate,
		FPS:       rl.GetFPS(),
		Active:    g.sim.Active(),
		Recording: g.recorder.Enabled(),
		Frames:    g.recorder.Exported(),
		Field:     g.lastField,
	})

	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	st := ui.ControlsState{
		Active:     g.sim.Active(),
		Recording:  g.recorder.Enabled(),
		ShowAgents: g.fieldRenderer.ShowAgents,
		Steps:      g.stepsPerUpdate,
		Gain:       float32(g.fieldRenderer.Gain),
	}
	act := g.controls.Draw(&st)
	g.stepsPerUpdate = st.Steps
	g.fieldRenderer.Gain = float64(st.Gain)

	if act.ToggleActive {
		g.toggleActive()
	}
	if act.ToggleRecording {
		g.recorder.Toggle()
	}
	if act.ToggleAgents {
		g.fieldRenderer.ShowAgents = !g.fieldRenderer.ShowAgents
	}
	if act.ResetCamera {
		g.camera.Reset()
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}

// drawInspector marks the selected slime and shows its components.
func (g *Game) drawInspector() {
	i, ok := g.inspector.Selected()
	if !ok || i >= len(g.agentsBuf) {
		return
	}
	a := g.agentsBuf[i]
	sx, sy := g.camera.WorldToScreen(float32(a.X), float32(a.Y))
	inspector.DrawMarker(sx, sy)

	pos, head, aff, ok := g.sim.Components(i)
	if !ok {
		return
	}
	g.inspector.Draw(int32(g.screenWidth)-inspector.PanelWidth-10, 250, pos, head, aff)
}
