package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/voxsmoke/config"
)

func init() {
	config.MustInit("")
}

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// A nil manager accepts every call
	if err := om.WriteCycle(CycleStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Error(err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteCycle(CycleStats{Cycle: i, Tick: int32(6 * i), ActiveCells: i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{PhaseDiffusion: 90}}, 120); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cycles.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("cycles.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "cycle,tick,total_density") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "3,18,") {
		t.Errorf("unexpected last row %q", lines[3])
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perf), "diffusion_pct") {
		t.Errorf("perf.csv missing phase columns: %s", perf)
	}

	loaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if loaded.Smoke.Stride != config.Cfg().Smoke.Stride {
		t.Errorf("stride round trip = %d, want %d", loaded.Smoke.Stride, config.Cfg().Smoke.Stride)
	}
}
