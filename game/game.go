// Package game hosts the slime simulation in a raylib window or headless.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/slime/camera"
	"github.com/pthm-cable/slime/config"
	"github.com/pthm-cable/slime/inspector"
	"github.com/pthm-cable/slime/renderer"
	"github.com/pthm-cable/slime/sim"
	"github.com/pthm-cable/slime/systems"
	"github.com/pthm-cable/slime/telemetry"
	"github.com/pthm-cable/slime/ui"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	// AutoStart opens the active gate immediately instead of waiting for the
	// user to finish placing obstacles.
	AutoStart bool
	Record    bool
}

// Game owns a Simulation and everything around it: rendering, input,
// recording and telemetry.
type Game struct {
	cfg *config.Config
	sim *sim.Simulation

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	lastField     telemetry.FieldStats

	// Rendering (nil when headless)
	headless      bool
	camera        *camera.Camera
	fieldRenderer *renderer.FieldRenderer
	recorder      *renderer.Recorder
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	controls      *ui.ControlsPanel
	inspector     *inspector.Inspector
	showPerf      bool

	// Obstacle drag in progress
	drag dragState

	// Reused render buffers
	agentsBuf []systems.Agent
	fieldBuf  []float64

	stepsPerUpdate int
	screenWidth    float32
	screenHeight   float32
}

// tickObserver forwards step phases to the perf collector but leaves the
// tick open so the host can time its own telemetry phase before closing it.
type tickObserver struct {
	*telemetry.PerfCollector
}

func (tickObserver) EndTick() {}

// NewGameWithOptions creates a game. In graphical mode the raylib window must
// already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	s, err := sim.New(cfg, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		cfg:            cfg,
		sim:            s,
		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Telemetry.CoverageThreshold),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats:       opts.LogStats,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}
	s.SetObserver(tickObserver{g.perfCollector})

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if !opts.Headless {
		g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Derived.WorldW32, cfg.Derived.WorldH32)
		g.fieldRenderer = renderer.NewFieldRenderer(cfg.Derived.WorldW, cfg.Derived.WorldH)
		g.fieldRenderer.Init()
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(10, 140)
		g.controls = ui.NewControlsPanel(int32(g.screenWidth))
		g.inspector = inspector.New()

		rec := cfg.Recording
		rec.Enabled = rec.Enabled || opts.Record
		g.recorder = renderer.NewRecorder(rec)
	}

	if opts.AutoStart {
		s.SetActive(true)
	}

	slog.Info("simulation created",
		"seed", opts.Seed,
		"world_w", cfg.Derived.WorldW,
		"world_h", cfg.Derived.WorldH,
		"agents", cfg.Slime.Count,
		"workers", s.Workers(),
		"food", len(s.Food()),
	)

	return g, nil
}

// SetStatsCallback installs a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Sim returns the underlying simulation.
func (g *Game) Sim() *sim.Simulation {
	return g.sim
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int64 {
	return g.sim.Tick()
}

// Update handles input and advances the simulation by up to stepsPerUpdate
// ticks while it is active.
func (g *Game) Update() {
	g.handleInput()
	g.runSteps()
}

// UpdateHeadless advances the simulation without touching raylib.
func (g *Game) UpdateHeadless() {
	g.runSteps()
}

func (g *Game) runSteps() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if !g.step() {
			return
		}
	}
}

// step runs one tick if the simulation is active, then the telemetry phase.
func (g *Game) step() bool {
	if !g.sim.Advance() {
		return false
	}
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perfCollector.EndTick()
	return true
}

// addObstacle appends an obstacle to the simulation and records it.
func (g *Game) addObstacle(o systems.Obstacle) {
	g.sim.AddObstacle(o)
	g.collector.RecordObstacle()
	slog.Debug("obstacle added", "x", o.X, "y", o.Y, "w", o.Width, "h", o.Height)
}

// addFood appends a food source at (x, y) with the configured radius.
func (g *Game) addFood(x, y float64) {
	g.sim.AddFood(systems.FoodSource{X: x, Y: y, Radius: g.cfg.Food.Radius})
	g.collector.RecordFood()
	slog.Debug("food added", "x", x, "y", y)
}

// Unload releases all resources.
func (g *Game) Unload() {
	g.sim.Close()
	if g.fieldRenderer != nil {
		g.fieldRenderer.Unload()
	}
	if g.recorder != nil {
		g.recorder.Stop()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
