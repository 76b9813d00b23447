// Smoke diffusion preview tool - interactive top and side slices with sliders.
//
// Usage: go run ./cmd/smokepreview
package main

import (
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/voxsmoke/config"
	"github.com/pthm-cable/voxsmoke/renderer"
	"github.com/pthm-cable/voxsmoke/systems"
	"github.com/pthm-cable/voxsmoke/voxel"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewSize  = 480
	panelX       = previewSize*2 + 40
	panelWidth   = windowWidth - panelX - 10

	gridW = 48
	gridH = 48
	gridD = 24
)

// PreviewParams holds the tunable diffusion parameters.
type PreviewParams struct {
	RateXY   float32
	RateUp   float32
	RateDown float32
	Emit     float32
	Layer    int
	Seed     int64
}

// preview owns the simulation being shown.
type preview struct {
	grid   *voxel.Grid
	engine *systems.Engine
	smoke  *renderer.SmokeTexture
	gpu    *renderer.RaylibVolumes
	light  renderer.Lighting

	side    rl.Texture2D
	sidePx  []color.RGBA
	maxCell float32
	emitAt  mgl32.Vec3
}

func main() {
	config.MustInit("")
	cfg := config.Cfg()

	rl.InitWindow(windowWidth, windowHeight, "Smoke Diffusion Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := PreviewParams{
		RateXY:   float32(cfg.Smoke.RateXY),
		RateUp:   float32(cfg.Smoke.RateUp),
		RateDown: float32(cfg.Smoke.RateDown),
		Emit:     2,
		Layer:    gridD / 4,
		Seed:     1,
	}

	p := newPreview(cfg, params)
	defer p.unload()

	animating := true
	needsRebuild := false

	for !rl.WindowShouldClose() {
		if needsRebuild {
			p.unload()
			p = newPreview(cfg, params)
			needsRebuild = false
		}

		if animating {
			p.engine.AddSmoke(p.emitAt, params.Emit)
			p.engine.Tick()
		}
		p.smoke.Upload(&p.light)
		p.updateSide()

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		p.drawTop(params.Layer)
		rl.DrawTexturePro(
			p.side,
			rl.Rectangle{X: 0, Y: 0, Width: gridW, Height: gridD},
			rl.Rectangle{X: previewSize + 30, Y: 10, Width: previewSize, Height: previewSize * gridD / gridW},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)
		rl.DrawRectangleLines(previewSize+30, 10, previewSize, previewSize*gridD/gridW, rl.DarkGray)

		// Stats
		sum := p.engine.Committed()
		state := p.engine.State()
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Cycle: %d  Phase: %d  Band: %d", p.engine.Cycles(), p.engine.Phase(), p.smoke.Band()), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Total: %.2f  Exists: %v  Visible: %v", sum.Total, state.SmokeExists(), state.SmokeVisible()), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText("Left: top slice at layer | Right: side slice through the emitter row", 15, statsY+40, 14, rl.Gray)

		// Control panel
		y := float32(10)
		rl.DrawText("Diffusion", panelX, int32(y), 20, rl.DarkGray)
		y += 35

		if v, changed := slider("Horizontal rate", &y, params.RateXY, 0, 0.16, "%.3f"); changed {
			params.RateXY = v
			needsRebuild = true
		}
		if v, changed := slider("Upward rate", &y, params.RateUp, 0, 0.2, "%.3f"); changed {
			params.RateUp = v
			needsRebuild = true
		}
		if v, changed := slider("Downward rate", &y, params.RateDown, 0, 0.2, "%.3f"); changed {
			params.RateDown = v
			needsRebuild = true
		}
		if v, changed := slider("Emitter rate", &y, params.Emit, 0, 10, "%.1f"); changed {
			params.Emit = v
		}
		if v, changed := slider("Layer", &y, float32(params.Layer), 0, gridD-1, "%.0f"); changed {
			params.Layer = int(v)
		}

		y += 10
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, toggleText(animating, "Pause", "Animate")) {
			animating = !animating
			p.engine.SetAnimate(animating)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, "Clear") {
			p.engine.Clear()
		}
		y += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, "New Seed") {
			params.Seed++
			needsRebuild = true
		}

		rl.EndDrawing()
	}
}

// slider draws a labeled slider and reports whether its value moved.
func slider(label string, y *float32, value, lo, hi float32, format string) (float32, bool) {
	rl.DrawText(label, panelX, int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: *y, Width: panelWidth - 60, Height: 20},
		"", "",
		value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(panelX+panelWidth-55), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v, v != value
}

func newPreview(cfg *config.Config, params PreviewParams) *preview {
	grid := voxel.NewGrid(gridW, gridH, gridD, mgl32.Vec3{-gridW / 2, -gridH / 2, 0}, mgl32.Vec3{1, 1, 1})
	ground := voxel.NewHeightmap(gridW, gridH, 0, gridD)
	voxel.Permeate(grid, ground, [3]float32{1, 1, 1})

	sp := systems.ParamsFromConfig(cfg)
	sp.RateXY = params.RateXY * float32(sp.Stride)
	sp.RateUp = params.RateUp
	sp.RateDown = params.RateDown
	sp.CeilingZ = gridD
	sp.FloorZ = 0

	everywhere := systems.VisibilityFunc(func(mgl32.Vec3, float32) bool { return true })
	engine := systems.NewEngine(grid, ground, everywhere, systems.NewRNG(params.Seed), sp)

	tp := renderer.TextureParamsFromConfig(cfg)
	tp.FloorZ = 0
	gpu := renderer.NewRaylibVolumes()

	img := rl.GenImageColor(gridW, gridD, rl.Black)
	side := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	return &preview{
		grid:    grid,
		engine:  engine,
		smoke:   renderer.NewSmokeTexture(grid, ground, engine.State(), gpu, tp),
		gpu:     gpu,
		light:   renderer.Lighting{Ambient: mgl32.Vec4{1, 1, 1, 1}, Diffuse: mgl32.Vec4{1, 1, 1, 1}},
		side:    side,
		sidePx:  make([]color.RGBA, gridW*gridD),
		maxCell: 1 / cfg.Derived.AlphaScale,
		emitAt:  mgl32.Vec3{0.5, 0.5, gridD / 4},
	}
}

// drawTop draws one horizontal layer out of the volume atlas.
func (p *preview) drawTop(layer int) {
	tex, ok := p.gpu.Texture(p.smoke.Texture())
	if !ok {
		return
	}
	scale := float32(previewSize) / gridW
	for x := 0; x < gridW; x++ {
		rl.DrawTexturePro(
			tex,
			rl.Rectangle{X: float32(x*gridD + layer), Y: 0, Width: 1, Height: gridH},
			rl.Rectangle{X: 10 + float32(x)*scale, Y: 10, Width: scale, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
	}
}

// updateSide rebuilds the XZ slice through the emitter row, top layer first.
func (p *preview) updateSide() {
	y := p.grid.YPos(p.emitAt.Y())
	for x := 0; x < gridW; x++ {
		col := p.grid.Column(x, y)
		for z := 0; z < gridD; z++ {
			v := min(1, col[z].Smoke/p.maxCell)
			shade := uint8(255 - 255*v)
			p.sidePx[(gridD-1-z)*gridW+x] = color.RGBA{R: shade, G: shade, B: shade, A: 255}
		}
	}
	rl.UpdateTexture(p.side, p.sidePx)
}

func (p *preview) unload() {
	p.smoke.Unload()
	rl.UnloadTexture(p.side)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
