// Package inspector selects a single slime and shows its ECS components.
package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slime/systems"
	"github.com/pthm-cable/slime/ui"
)

// PanelWidth is the inspector panel width in pixels.
const PanelWidth = 240

var (
	colorAngleBg     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	colorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
	colorBoolOn      = rl.Color{R: 100, G: 200, B: 100, A: 255}
	colorBoolOff     = rl.Color{R: 80, G: 80, B: 80, A: 255}
	colorSelection   = rl.Color{R: 255, G: 200, B: 80, A: 255}
)

// Inspector tracks the selected slime by its index in the agent list.
type Inspector struct {
	selected    int
	hasSelected bool
	widget      *ui.Renderer
}

// New creates an inspector with nothing selected.
func New() *Inspector {
	return &Inspector{widget: ui.NewRenderer()}
}

// Select picks the agent nearest to (x, y) on a worldW×worldH torus, within
// maxDist. It reports whether an agent was selected; a miss clears the
// selection.
func (ins *Inspector) Select(agents []systems.Agent, x, y, maxDist, worldW, worldH float64) bool {
	best := -1
	bestSq := maxDist * maxDist
	for i, a := range agents {
		dx := torusDelta(a.X, x, worldW)
		dy := torusDelta(a.Y, y, worldH)
		if d := dx*dx + dy*dy; d <= bestSq {
			best, bestSq = i, d
		}
	}

	ins.selected, ins.hasSelected = best, best >= 0
	return ins.hasSelected
}

// Deselect clears the selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the selected agent index.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.hasSelected
}

func torusDelta(a, b, size float64) float64 {
	d := math.Abs(a - b)
	if d > size/2 {
		d = size - d
	}
	return d
}

// DrawMarker circles the selected agent at screen position (sx, sy).
func DrawMarker(sx, sy float32) {
	rl.DrawCircleLines(int32(sx), int32(sy), 8, colorSelection)
}

// Draw renders the panel at (x, y) for the given components.
func (ins *Inspector) Draw(x, y int32, comps ...any) {
	w := ins.widget
	pad := w.Theme.Padding
	width := int32(PanelWidth)

	// Height follows the field count
	height := pad*2 + w.Theme.LineHeight + 4
	for _, c := range comps {
		height += w.Theme.LineHeight + 4
		for _, f := range ExtractFields(c) {
			if f.Widget == WidgetAngle {
				height += 28
			} else {
				height += w.Theme.LineHeight + 2
			}
		}
	}
	w.DrawPanel(x, y, width, height)

	cx, cy := x+pad, y+pad
	cy = w.DrawSectionHeader(cx, cy, fmt.Sprintf("Slime #%d", ins.selected))

	for _, c := range comps {
		cy = w.DrawSectionHeader(cx, cy, ComponentName(c))
		for _, f := range ExtractFields(c) {
			cy = ins.drawField(cx, cy, f, width-2*pad)
		}
	}
}

func (ins *Inspector) drawField(x, y int32, f Field, width int32) int32 {
	w := ins.widget
	switch f.Widget {
	case WidgetBar:
		v, _ := GetFloatValue(f.Value)
		return w.DrawBar(x, y, f.Name, "%.2f", v, 0, GetMax(f.Options), 2, width)

	case WidgetAngle:
		v, _ := GetFloatValue(f.Value)
		w.DrawLabelValue(x, y, f.Name, fmt.Sprintf("%.0f°", float64(v)*180/math.Pi))
		drawAngle(x+width-24, y+10, 12, v)
		return y + 28

	case WidgetBool:
		on, _ := f.Value.(bool)
		color := colorBoolOff
		if on {
			color = colorBoolOn
		}
		rl.DrawText(f.Name+":", x, y, w.Theme.FontSize, w.Theme.LabelColor)
		rl.DrawRectangle(x+w.Theme.LabelWidth, y+2, 10, 10, color)
		return y + w.Theme.LineHeight + 2

	default:
		return w.DrawLabelValue(x, y, f.Name, FormatValue(f.Value, f.Options["fmt"])) + 2
	}
}

// drawAngle draws a dial with a needle at angle radians (screen y down).
func drawAngle(cx, cy int32, r float32, angle float32) {
	rl.DrawCircle(cx, cy, r, colorAngleBg)
	ex := float32(cx) + r*float32(math.Cos(float64(angle)))
	ey := float32(cy) + r*float32(math.Sin(float64(angle)))
	rl.DrawLineEx(rl.Vector2{X: float32(cx), Y: float32(cy)}, rl.Vector2{X: ex, Y: ey}, 2, colorAngleNeedle)
}
