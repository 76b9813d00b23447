package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/voxsmoke/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Tick     int32
	Cycle    int
	Phase    int
	Band     int
	Speed    int
	FPS      int32
	Paused   bool
	Emitters int

	Exists  bool
	Visible bool
	Total   float32
	Layer   int
	Layers  int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Cycle: %d | Phase: %d | Band: %d", data.Tick, data.Cycle, data.Phase, data.Band),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Speed: %dx | FPS: %d | Emitters: %d | Layer: %d/%d", data.Speed, data.FPS, data.Emitters, data.Layer, data.Layers-1),
		10, 55, 16, rl.LightGray,
	)

	smoke := "no smoke"
	switch {
	case data.Visible:
		smoke = fmt.Sprintf("smoke visible (%.2f)", data.Total)
	case data.Exists:
		smoke = fmt.Sprintf("smoke hidden (%.2f)", data.Total)
	}
	rl.DrawText(smoke, 10, 75, 16, rl.LightGray)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 95, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders tick phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, phases []string) {
	r := p.renderer
	height := int32(len(phases)+2)*r.Theme.LineHeight + 2*r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, p.y+r.Theme.Padding, "Tick Phases")
	y = r.DrawLabelValue(x, y, "tick", stats.AvgTickDuration.Round(time.Microsecond).String())

	for _, name := range phases {
		y = r.DrawBar(x, y, name, float32(stats.PhasePct[name]), 100, p.width-2*r.Theme.Padding)
	}
}
