package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is the part of the host state the panel edits.
type ControlsState struct {
	Active     bool
	Recording  bool
	ShowAgents bool
	Steps      int
	Gain       float32
}

// ControlsAction reports which buttons were clicked this frame.
type ControlsAction struct {
	ToggleActive    bool
	ToggleRecording bool
	ToggleAgents    bool
	ResetCamera     bool
}

// ControlsPanel is the raygui panel in the top-right corner.
type ControlsPanel struct {
	x, y  float32
	width float32
}

const (
	controlsWidth  = 220
	controlsHeight = 230
)

// NewControlsPanel creates a panel anchored to the right edge of a screen of
// the given width.
func NewControlsPanel(screenW int32) *ControlsPanel {
	c := &ControlsPanel{width: controlsWidth}
	c.Resize(screenW)
	return c
}

// Resize re-anchors the panel after a window resize.
func (c *ControlsPanel) Resize(screenW int32) {
	c.x = float32(screenW) - c.width - 10
	c.y = 10
}

// Contains reports whether a screen point is over the panel, so that clicks
// there are not treated as world input.
func (c *ControlsPanel) Contains(x, y float32) bool {
	return x >= c.x && x < c.x+c.width && y >= c.y && y < c.y+controlsHeight
}

// Draw renders the panel, applies slider edits to st and returns the clicked
// buttons.
func (c *ControlsPanel) Draw(st *ControlsState) ControlsAction {
	var act ControlsAction

	rl.DrawRectangle(int32(c.x), int32(c.y), int32(c.width), controlsHeight, rl.Fade(rl.Black, 0.6))

	x := c.x + 10
	y := c.y + 10
	w := c.width - 20

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 30}, toggleText(st.Active, "Pause", "Start")) {
		act.ToggleActive = true
	}
	y += 38

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w/2 - 4, Height: 26}, toggleText(st.Recording, "Stop Rec", "Record")) {
		act.ToggleRecording = true
	}
	if gui.Button(rl.Rectangle{X: x + w/2 + 4, Y: y, Width: w/2 - 4, Height: 26}, toggleText(st.ShowAgents, "Hide Agents", "Show Agents")) {
		act.ToggleAgents = true
	}
	y += 34

	rl.DrawText(fmt.Sprintf("Steps per frame: %d", st.Steps), int32(x), int32(y), 14, rl.LightGray)
	y += 18
	steps := gui.SliderBar(rl.Rectangle{X: x + 20, Y: y, Width: w - 40, Height: 18}, "1", "10", float32(st.Steps), 1, 10)
	st.Steps = int(steps + 0.5)
	y += 28

	rl.DrawText(fmt.Sprintf("Brightness: %.2f", st.Gain), int32(x), int32(y), 14, rl.LightGray)
	y += 18
	st.Gain = gui.SliderBar(rl.Rectangle{X: x + 20, Y: y, Width: w - 40, Height: 18}, "0.1", "4", st.Gain, 0.1, 4)
	y += 30

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 26}, "Reset View") {
		act.ResetCamera = true
	}

	return act
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
