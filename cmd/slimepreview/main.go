// Slime parameter preview tool - live simulation with sliders.
//
// Usage: go run ./cmd/slimepreview
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slime/camera"
	"github.com/pthm-cable/slime/config"
	"github.com/pthm-cable/slime/renderer"
	"github.com/pthm-cable/slime/sim"
	"github.com/pthm-cable/slime/systems"
	"github.com/pthm-cable/slime/telemetry"
	"github.com/pthm-cable/slime/ui"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	worldSize    = 256
	panelWidth   = windowWidth - previewSize - 30
)

func previewConfig() *config.Config {
	cfg := config.Default()
	cfg.World.Width = worldSize
	cfg.World.Height = worldSize
	cfg.Slime.Count = 1500
	cfg.Parallel.Workers = 0
	cfg.ComputeDerived()
	return cfg
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rl.InitWindow(windowWidth, windowHeight, "Slime Parameter Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	cfg := previewConfig()
	seed := int64(12345)

	s, err := sim.New(cfg, seed)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		return
	}
	s.SetActive(true)
	defer func() { s.Close() }()

	cam := camera.New(previewSize, previewSize, worldSize, worldSize)
	field := renderer.NewFieldRenderer(worldSize, worldSize)
	field.Init()
	defer field.Unload()

	widgets := ui.NewRenderer()

	var (
		fieldBuf   []float64
		agentsBuf  []systems.Agent
		scratch    []float64
		stats      telemetry.FieldStats
		paused     bool
		autoGain   = true
		steps      float32 = 2
		needsReset bool
		copiedAt   float64 = -10
	)

	restart := func() {
		next, err := sim.New(cfg, seed)
		if err != nil {
			slog.Error("restart rejected", "error", err)
			return
		}
		s.Close()
		s = next
		s.SetActive(!paused)
	}

	for !rl.WindowShouldClose() {
		if needsReset {
			restart()
			needsReset = false
		}

		for i := 0; i < int(steps); i++ {
			s.Advance()
		}

		fieldBuf = s.FieldSnapshot(fieldBuf)
		agentsBuf = s.Agents(agentsBuf)
		stats, scratch = telemetry.ComputeFieldStats(fieldBuf, cfg.Telemetry.CoverageThreshold, scratch)
		if autoGain {
			field.Gain = renderer.AutoGain(stats.P99)
		}
		field.UpdateField(fieldBuf)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		field.Draw(cam, s.Obstacles(), s.Food(), agentsBuf)
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)

		// Stats under the preview
		statsY := int32(previewSize + 15)
		widgets.DrawPanel(5, statsY, previewSize-10, windowHeight-statsY-10)
		y := widgets.DrawSectionHeader(15, statsY+10, "Field")
		y = widgets.DrawLabelValue(15, y, "tick", fmt.Sprintf("%d", s.Tick()))
		y = widgets.DrawLabelValue(15, y, "total", fmt.Sprintf("%.1f", stats.Total))
		y = widgets.DrawLabelValue(15, y, "mean / max", fmt.Sprintf("%.4f / %.3f", stats.Mean, stats.Max))
		y = widgets.DrawLabelValue(15, y, "p90 / p99", fmt.Sprintf("%.4f / %.4f", stats.P90, stats.P99))
		y = widgets.DrawBar(15, y, "coverage", "%.2f", float32(stats.Coverage), 0, 1, 2, previewSize-40)
		widgets.DrawLabelValue(15, y, "gain", fmt.Sprintf("%.2f", field.Gain))

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Slime Parameters", int32(panelX), int32(panelY), 20, rl.LightGray)
		panelY += 35

		for _, sl := range sliders {
			rl.DrawText(sl.Label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			cur := sl.Get(&cfg.Slime)
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				cur, sl.Min, sl.Max,
			)
			rl.DrawText(fmt.Sprintf(sl.Format, cur), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
			if next != cur {
				sl.Set(&cfg.Slime, next)
				needsReset = true
			}
			panelY += 30
		}

		rl.DrawText("Steps per frame", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		steps = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "", steps, 1, 10,
		)
		rl.DrawText(fmt.Sprintf("%d", int(steps)), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
		panelY += 40

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(paused, "Run", "Pause")) {
			paused = !paused
			s.SetActive(!paused)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Restart") {
			needsReset = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 260, Y: panelY, Width: 120, Height: 30}, toggleText(autoGain, "Auto Gain: on", "Auto Gain: off")) {
			autoGain = !autoGain
			if !autoGain {
				field.Gain = 1
			}
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			seed = int64(rl.GetRandomValue(0, 99999))
			needsReset = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			cfg = previewConfig()
			seed = 12345
			needsReset = true
		}
		panelY += 45

		rl.DrawText(fmt.Sprintf("Seed: %d", seed), int32(panelX), int32(panelY), 14, rl.Gray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) {
			text, err := slimeYAML(cfg.Slime)
			if err != nil {
				slog.Error("failed to render yaml", "error", err)
			} else {
				rl.SetClipboardText(text)
				copiedAt = rl.GetTime()
			}
		}
		hint := "Press C to copy the slime YAML section to the clipboard"
		if rl.GetTime()-copiedAt < 2 {
			hint = "Copied"
		}
		rl.DrawText(hint, int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
