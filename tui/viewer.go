// Package tui renders the slime simulation in a terminal with tcell.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/slime/sim"
	"github.com/pthm-cable/slime/systems"
)

const frameInterval = 33 * time.Millisecond

var (
	obstacleStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorWhite)
	foodStyle     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	statusStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlack)
	dragStyle     = tcell.StyleDefault.Background(tcell.ColorGray)
)

// Viewer draws the pheromone field as half-block cells and maps mouse and
// keys onto the simulation.
type Viewer struct {
	screen tcell.Screen
	sim    *sim.Simulation

	worldW, worldH int
	cols, rows     int // terminal size; the field uses rows-1 lines

	// Mouse state in terminal cells
	mouseX, mouseY int
	dragging       bool
	dragX, dragY   int

	steps int
	gain  float64

	fieldBuf []float64
	cellBuf  []float64
}

// New creates a viewer on an initialised screen.
func New(screen tcell.Screen, s *sim.Simulation, steps int) *Viewer {
	if steps < 1 {
		steps = 1
	}
	w, h := s.WorldSize()
	v := &Viewer{
		screen: screen,
		sim:    s,
		worldW: w,
		worldH: h,
		steps:  steps,
		gain:   1,
	}
	screen.EnableMouse()
	v.cols, v.rows = screen.Size()
	return v
}

// Run polls events and advances the simulation until ctx is cancelled or
// the user quits.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	go v.screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !v.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			for i := 0; i < v.steps; i++ {
				if !v.sim.Advance() {
					break
				}
			}
			v.Draw()
		}
	}
}

// fieldRows is the number of terminal rows used by the field.
func (v *Viewer) fieldRows() int {
	return max(v.rows-1, 1)
}

// fieldCols is the number of terminal columns used by the field. A zero-width
// terminal still maps onto one column so coordinates stay finite.
func (v *Viewer) fieldCols() int {
	return max(v.cols, 1)
}

// cellToWorld maps the center of a terminal cell to world coordinates.
func (v *Viewer) cellToWorld(cx, cy int) (float64, float64) {
	x := (float64(cx) + 0.5) * float64(v.worldW) / float64(v.fieldCols())
	y := (float64(cy) + 0.5) * float64(v.worldH) / float64(v.fieldRows())
	return x, y
}

// worldToCell maps world coordinates to a terminal cell.
func (v *Viewer) worldToCell(x, y float64) (int, int) {
	return int(x * float64(v.fieldCols()) / float64(v.worldW)), int(y * float64(v.fieldRows()) / float64(v.worldH))
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.sim.SetActive(!v.sim.Active())
			case 'f':
				x, y := v.cellToWorld(v.mouseX, v.mouseY)
				v.sim.AddFood(systems.FoodSource{X: x, Y: y, Radius: v.sim.Config().Food.Radius})
			case 'c':
				v.sim.ClearField()
			case '+', '=':
				v.steps = min(v.steps+1, 10)
			case '-':
				v.steps = max(v.steps-1, 1)
			case ']':
				v.gain *= 1.25
			case '[':
				v.gain /= 1.25
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		v.mouseX, v.mouseY = x, y
		pressed := ev.Buttons()&tcell.Button1 != 0
		switch {
		case pressed && !v.dragging && y < v.fieldRows():
			v.dragging = true
			v.dragX, v.dragY = x, y
		case !pressed && v.dragging:
			v.dragging = false
			v.addDragObstacle(x, y)
		}

	case *tcell.EventResize:
		v.cols, v.rows = v.screen.Size()
		v.screen.Sync()
	}
	return true
}

// addDragObstacle turns the dragged cell span into an obstacle covering the
// full world extent of the end cells.
func (v *Viewer) addDragObstacle(x, y int) {
	x0, x1 := min(v.dragX, x), max(v.dragX, x)
	y0, y1 := min(v.dragY, y), max(v.dragY, y)
	y1 = min(y1, v.fieldRows()-1)

	cw := float64(v.worldW) / float64(v.fieldCols())
	ch := float64(v.worldH) / float64(v.fieldRows())
	o := systems.ObstacleFromCorners(float64(x0)*cw, float64(y0)*ch, float64(x1+1)*cw, float64(y1+1)*ch)
	v.sim.AddObstacle(o)
	slog.Debug("obstacle added", "x", o.X, "y", o.Y, "w", o.Width, "h", o.Height)
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	v.screen.Clear()
	rows := v.fieldRows()

	// Two field samples per terminal row via the upper half block
	v.fieldBuf = v.sim.FieldSnapshot(v.fieldBuf)
	v.cellBuf = downsample(v.fieldBuf, v.worldW, v.worldH, v.cols, rows*2, v.cellBuf)
	for y := 0; y < rows; y++ {
		for x := 0; x < v.cols; x++ {
			top := v.gray(v.cellBuf[(2*y)*v.cols+x])
			bottom := v.gray(v.cellBuf[(2*y+1)*v.cols+x])
			v.screen.SetContent(x, y, '▀', nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}

	for _, o := range v.sim.Obstacles() {
		x0, y0 := v.worldToCell(o.X, o.Y)
		x1, y1 := v.worldToCell(o.X+o.Width, o.Y+o.Height)
		v.fill(x0, y0, x1, y1, ' ', obstacleStyle)
	}
	for _, f := range v.sim.Food() {
		x, y := v.worldToCell(f.X, f.Y)
		if x < v.cols && y < rows {
			v.screen.SetContent(x, y, '●', nil, foodStyle)
		}
	}
	if v.dragging {
		v.fill(min(v.dragX, v.mouseX), min(v.dragY, v.mouseY), max(v.dragX, v.mouseX), max(v.dragY, v.mouseY), ' ', dragStyle)
	}

	v.drawStatus()
	v.screen.Show()
}

func (v *Viewer) fill(x0, y0, x1, y1 int, r rune, style tcell.Style) {
	for y := max(y0, 0); y <= y1 && y < v.fieldRows(); y++ {
		for x := max(x0, 0); x <= x1 && x < v.cols; x++ {
			v.screen.SetContent(x, y, r, nil, style)
		}
	}
}

func (v *Viewer) gray(value float64) tcell.Color {
	g := value * v.gain
	if g < 0 {
		g = 0
	}
	if g > 1 {
		g = 1
	}
	c := int32(g * 255)
	return tcell.NewRGBColor(c, c, c)
}

func (v *Viewer) drawStatus() {
	state := "SETUP drag: obstacle, f: food, space: start"
	if v.sim.Active() {
		state = "RUNNING space: pause"
	}
	line := fmt.Sprintf(" tick %d | steps %d | obstacles %d | food %d | %s | c: clear | q: quit ",
		v.sim.Tick(), v.steps, len(v.sim.Obstacles()), len(v.sim.Food()), state)

	y := v.rows - 1
	x := 0
	for _, r := range line {
		if x >= v.cols {
			break
		}
		v.screen.SetContent(x, y, r, nil, statusStyle)
		x++
	}
}
