// Package config provides configuration loading and access for the smoke simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Smoke     SmokeConfig     `yaml:"smoke"`
	Texture   TextureConfig   `yaml:"texture"`
	Lighting  LightingConfig  `yaml:"lighting"`
	Camera    CameraConfig    `yaml:"camera"`
	Emitters  []EmitterConfig `yaml:"emitters"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig describes the voxel lighting grid the smoke lives in.
// The grid spans [-SceneX, SceneX] x [-SceneY, SceneY] x [ZMin, ZMax].
type GridConfig struct {
	SizeX  int     `yaml:"size_x"`
	SizeY  int     `yaml:"size_y"`
	SizeZ  int     `yaml:"size_z"`
	SceneX float64 `yaml:"scene_x"` // Half extent along X
	SceneY float64 `yaml:"scene_y"` // Half extent along Y
	ZMin   float64 `yaml:"z_min"`
	ZMax   float64 `yaml:"z_max"`

	CeilingZ        float64 `yaml:"ceiling_z"`          // No smoke at or above this height
	FloorZ          float64 `yaml:"floor_z"`            // Lowest collision object height
	NoSmokeOverMesh bool    `yaml:"no_smoke_over_mesh"` // Only allow smoke where the mesh is disabled
}

// TerrainConfig holds procedural terrain parameters for the demo grid.
type TerrainConfig struct {
	Seed       int64   `yaml:"seed"`
	Scale      float64 `yaml:"scale"`       // Noise frequency in cells
	Amplitude  float64 `yaml:"amplitude"`   // Height variation in world units
	BaseHeight float64 `yaml:"base_height"` // Mean terrain height
	Disabled   float64 `yaml:"disabled"`    // Fraction of columns with the mesh disabled (indoor areas)
}

// SmokeConfig holds diffusion parameters.
type SmokeConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Stride     int     `yaml:"stride"`      // Rows skipped per tick; a full pass takes Stride ticks
	Density    float64 `yaml:"density"`     // Scale applied to injected amounts
	MaxValue   float64 `yaml:"max_value"`   // Per-cell density ceiling
	MaxCell    float64 `yaml:"max_cell"`    // Density that maps to full texture alpha
	RateXY     float64 `yaml:"rate_xy"`     // Horizontal diffusion rate per visit (before stride scaling)
	RateUp     float64 `yaml:"rate_up"`     // Vertical rate for smoke moving up
	RateDown   float64 `yaml:"rate_down"`   // Vertical rate for smoke moving down
	FloorValue float64 `yaml:"floor_value"` // Densities below this snap to zero
}

// TextureConfig holds texture streaming parameters.
type TextureConfig struct {
	Bands        int        `yaml:"bands"`         // Row bands per partial refresh cycle
	Bilinear     bool       `yaml:"bilinear"`      // Linear filtering on the GPU texture
	MeshVisible  bool       `yaml:"mesh_visible"`  // Zero lighting below the mesh surface
	OutsideColor [3]float64 `yaml:"outside_color"` // Lighting for absent grid columns
}

// LightingConfig holds the global light colors. A change forces a full texture refresh.
type LightingConfig struct {
	Ambient [4]float64 `yaml:"ambient"`
	Diffuse [4]float64 `yaml:"diffuse"`
}

// CameraConfig holds the viewer camera used for smoke visibility.
type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	FOV      float64    `yaml:"fov"` // Vertical field of view in degrees
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
}

// EmitterConfig places a smoke source in the world.
type EmitterConfig struct {
	Position [3]float64 `yaml:"position"`
	Rate     float64    `yaml:"rate"`  // Amount injected per tick
	Ticks    int        `yaml:"ticks"` // Lifetime in ticks (0 = forever)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow   int `yaml:"perf_window"`   // Ticks averaged by the perf collector
	LogInterval  int `yaml:"log_interval"`  // Ticks between perf log lines (0 = never)
	CycleLogging int `yaml:"cycle_logging"` // Write every Nth committed cycle to CSV (0 = none)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellX, CellY, CellZ float32 // World size of one cell per axis
	RateXY              float32 // Smoke.RateXY scaled by the stride
	RateUp, RateDown    float32
	MaxValue            float32
	FloorValue          float32
	AlphaScale          float32 // 1 / Smoke.MaxCell
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	if c.Grid.SizeX <= 0 || c.Grid.SizeY <= 0 || c.Grid.SizeZ <= 0 {
		return fmt.Errorf("grid size must be positive, got %dx%dx%d", c.Grid.SizeX, c.Grid.SizeY, c.Grid.SizeZ)
	}
	if c.Grid.ZMax <= c.Grid.ZMin {
		return fmt.Errorf("grid z_max (%g) must exceed z_min (%g)", c.Grid.ZMax, c.Grid.ZMin)
	}
	if c.Smoke.Stride <= 0 {
		return fmt.Errorf("smoke stride must be positive, got %d", c.Smoke.Stride)
	}
	if c.Texture.Bands <= 0 || c.Grid.SizeY%c.Texture.Bands != 0 {
		return fmt.Errorf("texture bands (%d) must divide grid size_y (%d)", c.Texture.Bands, c.Grid.SizeY)
	}
	if c.Smoke.MaxCell <= 0 {
		return fmt.Errorf("smoke max_cell must be positive, got %g", c.Smoke.MaxCell)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.CellX = float32(2 * c.Grid.SceneX / float64(c.Grid.SizeX))
	c.Derived.CellY = float32(2 * c.Grid.SceneY / float64(c.Grid.SizeY))
	c.Derived.CellZ = float32((c.Grid.ZMax - c.Grid.ZMin) / float64(c.Grid.SizeZ))

	// Each row is only visited once every Stride ticks
	c.Derived.RateXY = float32(c.Smoke.RateXY * float64(c.Smoke.Stride))
	c.Derived.RateUp = float32(c.Smoke.RateUp)
	c.Derived.RateDown = float32(c.Smoke.RateDown)
	c.Derived.MaxValue = float32(c.Smoke.MaxValue)
	c.Derived.FloorValue = float32(c.Smoke.FloorValue)
	c.Derived.AlphaScale = float32(1 / c.Smoke.MaxCell)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
