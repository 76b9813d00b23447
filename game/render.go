package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/voxsmoke/telemetry"
	"github.com/pthm-cable/voxsmoke/ui"
)

var (
	groundColor = rl.Color{R: 70, G: 55, B: 40, A: 255}
	openColor   = rl.Color{R: 15, G: 20, B: 35, A: 255}
)

// Draw renders one horizontal layer of the smoke texture with the HUD.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.drawTerrainSlice()
	g.drawSmokeSlice()
	g.drawBoundingBox()
	g.drawEmitters()
	g.drawUI()

	rl.EndDrawing()
}

// sliceLayout returns the screen origin and cell size of the slice view.
func (g *Game) sliceLayout() (x0, y0, scale float32) {
	x0, y0 = 20, 120
	scale = min((g.screenWidth-300)/float32(g.grid.W), (g.screenHeight-160)/float32(g.grid.H))
	return x0, y0, max(scale, 1)
}

// drawTerrainSlice marks columns whose surface lies above the shown layer.
func (g *Game) drawTerrainSlice() {
	x0, y0, scale := g.sliceLayout()
	top := g.grid.ZVal(g.layer + 1)
	for y := 0; y < g.grid.H; y++ {
		for x := 0; x < g.grid.W; x++ {
			c := openColor
			if top <= g.terrain.MeshHeight(x, y) {
				c = groundColor
			}
			rl.DrawRectangle(int32(x0+float32(x)*scale), int32(y0+float32(y)*scale), int32(scale)+1, int32(scale)+1, c)
		}
	}
}

// drawSmokeSlice draws the current layer out of the volume atlas. Each grid
// column occupies a run of D texels along the atlas row, so the layer is
// gathered one column strip at a time.
func (g *Game) drawSmokeSlice() {
	if g.gpuVolumes == nil {
		return
	}
	tex, ok := g.gpuVolumes.Texture(g.smokeTex.Texture())
	if !ok {
		return
	}
	x0, y0, scale := g.sliceLayout()
	d := g.grid.D
	for x := 0; x < g.grid.W; x++ {
		src := rl.Rectangle{X: float32(x*d + g.layer), Y: 0, Width: 1, Height: float32(g.grid.H)}
		dst := rl.Rectangle{X: x0 + float32(x)*scale, Y: y0, Width: scale, Height: float32(g.grid.H) * scale}
		rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
	}
}

// drawBoundingBox outlines the committed visible smoke box in the XY plane.
func (g *Game) drawBoundingBox() {
	box := g.engine.State().BoundingBox()
	if box.Empty() {
		return
	}
	x0, y0, scale := g.sliceLayout()
	minX := x0 + (box.Min.X()-g.grid.Min.X())/g.grid.Step.X()*scale
	minY := y0 + (box.Min.Y()-g.grid.Min.Y())/g.grid.Step.Y()*scale
	maxX := x0 + (box.Max.X()-g.grid.Min.X())/g.grid.Step.X()*scale
	maxY := y0 + (box.Max.Y()-g.grid.Min.Y())/g.grid.Step.Y()*scale
	rl.DrawRectangleLines(int32(minX), int32(minY), int32(maxX-minX), int32(maxY-minY), rl.Yellow)
}

// drawEmitters marks emitter positions; emitters in the shown layer are filled.
func (g *Game) drawEmitters() {
	x0, y0, scale := g.sliceLayout()
	query := g.emitterFilter.Query()
	for query.Next() {
		pos, em := query.Get()
		sx := x0 + (pos.X-g.grid.Min.X())/g.grid.Step.X()*scale
		sy := y0 + (pos.Y-g.grid.Min.Y())/g.grid.Step.Y()*scale
		color := rl.Orange
		if !em.Forever {
			color = rl.SkyBlue
		}
		if g.grid.ZPos(pos.Z) == g.layer {
			rl.DrawCircle(int32(sx), int32(sy), 4, color)
		} else {
			rl.DrawCircleLines(int32(sx), int32(sy), 4, color)
		}
	}
}

func (g *Game) drawUI() {
	state := g.engine.State()
	g.hud.Draw(ui.HUDData{
		Title:    "Voxel Smoke",
		Tick:     g.tick,
		Cycle:    g.engine.Cycles(),
		Phase:    g.engine.Phase(),
		Band:     g.smokeTex.Band(),
		Speed:    g.stepsPerUpdate,
		FPS:      rl.GetFPS(),
		Paused:   g.paused,
		Emitters: g.emitterCount,
		Exists:   state.SmokeExists(),
		Visible:  state.SmokeVisible(),
		Total:    g.engine.Committed().Total,
		Layer:    g.layer,
		Layers:   g.grid.D,
	})
	g.perfPanel.Draw(g.perfCollector.Stats(), telemetry.Phases)
	g.hud.DrawControls(int32(g.screenHeight),
		"SPACE: Pause | < >: Speed | Up/Down: Layer | Left/Right: Orbit | Click: Emitter | C: Clear | L: Light")
}
