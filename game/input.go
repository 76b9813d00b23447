package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/voxsmoke/config"
	"github.com/pthm-cable/voxsmoke/voxel"
)

// Diffuse light scales cycled with the L key.
var lightLevels = []float32{1, 0.6, 0.3}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.SetPaused(!g.paused)
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	// Layer selection
	if rl.IsKeyPressed(rl.KeyUp) && g.layer < g.grid.D-1 {
		g.layer++
	}
	if rl.IsKeyPressed(rl.KeyDown) && g.layer > 0 {
		g.layer--
	}

	// Orbiting changes which cells are visible, not the smoke itself
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Orbit(0.02)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Orbit(-0.02)
	}

	if rl.IsKeyPressed(rl.KeyC) {
		g.engine.Clear()
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.cycleLighting()
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		mouse := rl.GetMousePosition()
		if pos, ok := g.sliceToWorld(mouse.X, mouse.Y); ok {
			g.AddEmitter(pos, 2, 300)
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	if g.perfPanel != nil {
		g.perfPanel.SetPosition(int32(w)-250, 10)
	}
}

// cycleLighting dims the diffuse light one step and rebakes the grid colors.
func (g *Game) cycleLighting() {
	g.lightLevel = (g.lightLevel + 1) % len(lightLevels)
	base := vec4(config.Cfg().Lighting.Diffuse)
	g.light.Diffuse = base.Mul(lightLevels[g.lightLevel])

	voxel.Permeate(g.grid, g.terrain, skyColor(g.light))
	g.light.IndirectUpdated = true
}

// sliceToWorld maps a screen point on the slice view to the world position of
// the cell center in the current layer.
func (g *Game) sliceToWorld(sx, sy float32) (mgl32.Vec3, bool) {
	x0, y0, scale := g.sliceLayout()
	x := int((sx - x0) / scale)
	y := int((sy - y0) / scale)
	if sx < x0 || sy < y0 || x >= g.grid.W || y >= g.grid.H {
		return mgl32.Vec3{}, false
	}
	half := g.grid.Step.Mul(0.5)
	return g.grid.Pos(x, y, g.layer).Add(half), true
}
