// Package ui draws the on-screen HUD and control panel.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slime/telemetry"
)

// HUDData holds everything the HUD shows for one frame.
type HUDData struct {
	Title     string
	Agents    int
	Obstacles int
	Food      int
	Workers   int
	Tick      int64
	Steps     int // ticks per frame
	FPS       int32
	Active    bool
	Recording bool
	Frames    int // exported frames
	Field     telemetry.FieldStats
}

// HUD renders the heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Agents: %d | Obstacles: %d | Food: %d | Workers: %d", data.Agents, data.Obstacles, data.Food, data.Workers),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Steps: %dx | FPS: %d", data.Tick, data.Steps, data.FPS),
		10, 55, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Trail: total %.0f | max %.2f | coverage %.1f%%", data.Field.Total, data.Field.Max, data.Field.Coverage*100),
		10, 75, 16, rl.LightGray,
	)

	status := "DRAW OBSTACLES - press Space to start"
	if data.Active {
		status = "Running"
	}
	rl.DrawText(status, 10, 95, 16, rl.Yellow)

	if data.Recording {
		rl.DrawCircle(16, 124, 6, rl.Red)
		rl.DrawText(fmt.Sprintf("REC %d", data.Frames), 28, 116, 16, rl.Red)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders step timing by phase.
type PerfPanel struct {
	x, y   int32
	widget *Renderer
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y, widget: NewRenderer()}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

const perfPanelWidth = 260

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	w := p.widget
	pad := w.Theme.Padding
	height := pad*2 + w.Theme.LineHeight*3 + 4 + int32(len(telemetry.Phases))*(w.Theme.LineHeight+2)
	w.DrawPanel(p.x, p.y, perfPanelWidth, height)

	x, y := p.x+pad, p.y+pad
	y = w.DrawSectionHeader(x, y, "Step Performance")
	y = w.DrawLabelValue(x, y, "avg / p95", fmt.Sprintf("%dus / %dus", stats.AvgTick.Microseconds(), stats.P95Tick.Microseconds()))
	y = w.DrawLabelValue(x, y, "ticks/s", fmt.Sprintf("%.0f", stats.TicksPerSecond))

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		y = w.DrawBar(x, y, phase, "%.1f%%", float32(pct), 0, 100, 0.5, perfPanelWidth-2*pad)
	}
}
