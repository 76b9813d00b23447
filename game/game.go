// Package game drives the smoke simulation: emitters, diffusion, texture
// upload and telemetry, in headless or graphical mode.
package game

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/voxsmoke/camera"
	"github.com/pthm-cable/voxsmoke/components"
	"github.com/pthm-cable/voxsmoke/config"
	"github.com/pthm-cable/voxsmoke/renderer"
	"github.com/pthm-cable/voxsmoke/systems"
	"github.com/pthm-cable/voxsmoke/telemetry"
	"github.com/pthm-cable/voxsmoke/ui"
	"github.com/pthm-cable/voxsmoke/voxel"
)

// Options configures a game instance.
type Options struct {
	Seed           int64
	LogStats       bool   // Log cycle and perf stats via slog
	OutputDir      string // CSV and config snapshot directory (empty = disabled)
	Headless       bool   // No window; textures are kept in host memory
	StepsPerUpdate int    // Simulation ticks per Update call

	// CycleCallback, when set, receives the stats of every logged cycle.
	CycleCallback func(telemetry.CycleStats)
}

// Game holds the complete simulation state.
type Game struct {
	world *ecs.World

	emitterMap    *ecs.Map2[components.Position, components.Emitter]
	emitterFilter *ecs.Filter2[components.Position, components.Emitter]
	emitterCount  int

	grid    *voxel.Grid
	terrain *voxel.Heightmap
	camera  *camera.Camera
	engine  *systems.Engine

	// Rendering
	volumes    renderer.VolumeTextures
	gpuVolumes *renderer.RaylibVolumes // nil in headless mode
	smokeTex   *renderer.SmokeTexture
	light      renderer.Lighting
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel

	// Telemetry
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	cycleCallback func(telemetry.CycleStats)
	logStats      bool
	logInterval   int32
	cycleLogging  int
	lastCycle     telemetry.CycleStats
	densities     []float64

	// State
	tick           int32
	paused         bool
	headless       bool
	stepsPerUpdate int
	layer          int
	lightLevel     int

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a new game instance from the global config.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()
	world := ecs.NewWorld()

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		world:          world,
		emitterMap:     ecs.NewMap2[components.Position, components.Emitter](world),
		emitterFilter:  ecs.NewFilter2[components.Position, components.Emitter](world),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		cycleCallback:  opts.CycleCallback,
		logStats:       opts.LogStats,
		logInterval:    int32(cfg.Telemetry.LogInterval),
		cycleLogging:   cfg.Telemetry.CycleLogging,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
	}

	g.buildWorld(cfg, opts.Seed)

	if opts.Headless {
		g.volumes = renderer.NewMemoryVolumes()
	} else {
		g.gpuVolumes = renderer.NewRaylibVolumes()
		g.volumes = g.gpuVolumes
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-250, 10, 240)
	}
	g.smokeTex = renderer.NewSmokeTexture(g.grid, g.terrain, g.engine.State(), g.volumes, renderer.TextureParamsFromConfig(cfg))

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.spawnConfiguredEmitters(cfg)
	return g
}

// buildWorld creates the grid, terrain, camera and diffusion engine.
func (g *Game) buildWorld(cfg *config.Config, seed int64) {
	origin := mgl32.Vec3{float32(-cfg.Grid.SceneX), float32(-cfg.Grid.SceneY), float32(cfg.Grid.ZMin)}
	step := mgl32.Vec3{cfg.Derived.CellX, cfg.Derived.CellY, cfg.Derived.CellZ}
	g.grid = voxel.NewGrid(cfg.Grid.SizeX, cfg.Grid.SizeY, cfg.Grid.SizeZ, origin, step)

	g.terrain = voxel.GenerateHeightmap(cfg.Grid.SizeX, cfg.Grid.SizeY, voxel.TerrainParams{
		Seed:       cfg.Terrain.Seed,
		Scale:      cfg.Terrain.Scale,
		Amplitude:  cfg.Terrain.Amplitude,
		BaseHeight: cfg.Terrain.BaseHeight,
		MaxZ:       float32(cfg.Grid.CeilingZ),
		Disabled:   cfg.Terrain.Disabled,
	})

	g.light = renderer.Lighting{
		Ambient: vec4(cfg.Lighting.Ambient),
		Diffuse: vec4(cfg.Lighting.Diffuse),
	}
	voxel.Permeate(g.grid, g.terrain, skyColor(g.light))

	g.camera = camera.New(
		vec3(cfg.Camera.Position),
		vec3(cfg.Camera.Target),
		float32(cfg.Camera.FOV),
		g.screenWidth/g.screenHeight,
		float32(cfg.Camera.Near),
		float32(cfg.Camera.Far),
	)

	g.engine = systems.NewEngine(g.grid, g.terrain, g.camera, systems.NewRNG(seed), systems.ParamsFromConfig(cfg))
	g.engine.SetEnabled(cfg.Smoke.Enabled)
	g.layer = g.grid.D / 2

	slog.Info("world built",
		"grid", []int{g.grid.W, g.grid.H, g.grid.D},
		"cell", []float32{step.X(), step.Y(), step.Z()},
		"seed", seed,
	)
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 { return g.tick }

// Engine returns the diffusion engine.
func (g *Game) Engine() *systems.Engine { return g.engine }

// Grid returns the voxel grid.
func (g *Game) Grid() *voxel.Grid { return g.grid }

// SmokeTexture returns the texture streamer.
func (g *Game) SmokeTexture() *renderer.SmokeTexture { return g.smokeTex }

// Volumes returns the texture backend.
func (g *Game) Volumes() renderer.VolumeTextures { return g.volumes }

// EmitterCount returns the number of live emitters.
func (g *Game) EmitterCount() int { return g.emitterCount }

// LastCycle returns the stats of the most recently logged cycle.
func (g *Game) LastCycle() telemetry.CycleStats { return g.lastCycle }

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
	g.engine.SetAnimate(!paused)
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// Unload releases GPU resources and closes output files.
func (g *Game) Unload() {
	g.smokeTex.Unload()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// skyColor is the flat indirect light baked into open cells.
func skyColor(l renderer.Lighting) [3]float32 {
	var c [3]float32
	for i := range c {
		c[i] = min(1, l.Ambient[i]+0.5*l.Diffuse[i])
	}
	return c
}

func vec3(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func vec4(v [4]float64) mgl32.Vec4 {
	return mgl32.Vec4{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
}
