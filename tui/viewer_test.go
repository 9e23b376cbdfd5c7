package tui

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/slime/config"
	"github.com/pthm-cable/slime/sim"
	"github.com/pthm-cable/slime/systems"
)

func newTestViewer(t *testing.T) (*Viewer, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	cfg := config.Default()
	cfg.World.Width = 80
	cfg.World.Height = 46
	cfg.Slime.Count = 50
	cfg.Food.Count = 0
	cfg.Parallel.Workers = 1
	s, err := sim.New(cfg, 3)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	t.Cleanup(s.Close)

	return New(screen, s, 2), screen
}

func TestDownsample(t *testing.T) {
	field := []float64{
		1, 1, 2, 2,
		1, 1, 2, 2,
		0, 0, 4, 8,
		0, 0, 4, 8,
	}
	got := downsample(field, 4, 4, 2, 2, nil)
	want := []float64{1, 2, 0, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	up := downsample([]float64{3}, 1, 1, 2, 2, got)
	for i, v := range up {
		if v != 3 {
			t.Errorf("upsampled cell %d: expected 3, got %v", i, v)
		}
	}
}

func TestViewerKeys(t *testing.T) {
	v, _ := newTestViewer(t)

	if !v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)) {
		t.Fatal("space should not quit")
	}
	if !v.sim.Active() {
		t.Error("expected space to start the simulation")
	}

	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone))
	if v.steps != 3 {
		t.Errorf("expected 3 steps, got %d", v.steps)
	}

	v.HandleEvent(tcell.NewEventMouse(40, 10, tcell.ButtonNone, tcell.ModNone))
	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone))
	food := v.sim.Food()
	if len(food) != 1 {
		t.Fatalf("expected one food source, got %d", len(food))
	}
	if food[0].X != 40.5 || food[0].Y != 21 {
		t.Errorf("expected food at cell center (40.5, 21), got (%v, %v)", food[0].X, food[0].Y)
	}

	quits := []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
	}
	for _, ev := range quits {
		if v.HandleEvent(ev) {
			t.Errorf("expected %v to quit", ev.Name())
		}
	}
}

func TestViewerClearKey(t *testing.T) {
	v, _ := newTestViewer(t)
	for i := 0; i < 3; i++ {
		v.sim.Step()
	}
	if v.sim.Field().Total() == 0 {
		t.Fatal("expected trails before clearing")
	}

	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone))
	if got := v.sim.Field().Total(); got != 0 {
		t.Errorf("expected c to clear the field, got total %v", got)
	}
}

func TestViewerZeroWidthTerminal(t *testing.T) {
	v, _ := newTestViewer(t)
	v.cols = 0

	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone))
	food := v.sim.Food()
	if len(food) != 1 {
		t.Fatalf("expected one food source, got %d", len(food))
	}
	for _, c := range []float64{food[0].X, food[0].Y} {
		if math.IsInf(c, 0) || math.IsNaN(c) {
			t.Fatalf("expected finite food position, got (%v, %v)", food[0].X, food[0].Y)
		}
	}

	v.HandleEvent(tcell.NewEventMouse(0, 2, tcell.Button1, tcell.ModNone))
	v.HandleEvent(tcell.NewEventMouse(0, 3, tcell.ButtonNone, tcell.ModNone))
	for _, o := range v.sim.Obstacles() {
		for _, c := range []float64{o.X, o.Y, o.Width, o.Height} {
			if math.IsInf(c, 0) || math.IsNaN(c) {
				t.Fatalf("expected finite obstacle, got %+v", o)
			}
		}
	}

	v.Draw()
}

func TestViewerDragObstacle(t *testing.T) {
	v, _ := newTestViewer(t)

	v.HandleEvent(tcell.NewEventMouse(19, 9, tcell.Button1, tcell.ModNone))
	v.HandleEvent(tcell.NewEventMouse(15, 7, tcell.Button1, tcell.ModNone))
	if !v.dragging {
		t.Fatal("expected drag in progress")
	}
	v.HandleEvent(tcell.NewEventMouse(10, 5, tcell.ButtonNone, tcell.ModNone))

	obs := v.sim.Obstacles()
	if len(obs) != 1 {
		t.Fatalf("expected one obstacle, got %d", len(obs))
	}
	want := systems.Obstacle{X: 10, Y: 10, Width: 10, Height: 10}
	if obs[0] != want {
		t.Errorf("expected %+v, got %+v", want, obs[0])
	}
}

func TestViewerDraw(t *testing.T) {
	v, screen := newTestViewer(t)
	v.sim.AddObstacle(systems.Obstacle{X: 0, Y: 0, Width: 4, Height: 4})

	v.Draw()

	r, _, style, _ := screen.GetContent(1, 0)
	if r != ' ' {
		t.Errorf("expected obstacle cell, got %q", r)
	}
	if _, bg, _ := style.Decompose(); bg != tcell.ColorWhite {
		t.Errorf("expected white obstacle background, got %v", bg)
	}

	r, _, _, _ = screen.GetContent(40, 12)
	if r != '▀' {
		t.Errorf("expected half block in the field, got %q", r)
	}

	var status []rune
	for x := 0; x < 6; x++ {
		r, _, _, _ := screen.GetContent(x, 23)
		status = append(status, r)
	}
	if string(status) != " tick " {
		t.Errorf("expected status line, got %q", string(status))
	}
}

func TestViewerRunStopsOnCancel(t *testing.T) {
	v, _ := newTestViewer(t)
	v.sim.SetActive(true)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if err := v.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if v.sim.Tick() == 0 {
		t.Error("expected the simulation to advance while running")
	}
}
