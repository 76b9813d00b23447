package telemetry

import (
	"testing"
	"time"
)

func runTicks(pc *PerfCollector, n int, diffusion time.Duration) {
	for i := 0; i < n; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseEmitters)
		pc.StartPhase(PhaseDiffusion)
		time.Sleep(diffusion)
		pc.StartPhase(PhaseUpload)
		time.Sleep(diffusion / 10)
		pc.EndTick()
	}
}

func TestPerfCollector_TracksPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	runTicks(pc, 5, 200*time.Microsecond)

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	for _, phase := range []string{PhaseEmitters, PhaseDiffusion, PhaseUpload} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected %s phase to be tracked", phase)
		}
	}
	if _, ok := stats.PhaseAvg[PhaseTelemetry]; ok {
		t.Error("telemetry phase was never started")
	}
	if stats.PhasePct[PhaseDiffusion] <= stats.PhasePct[PhaseUpload] {
		t.Errorf("diffusion (%v%%) should dominate upload (%v%%)",
			stats.PhasePct[PhaseDiffusion], stats.PhasePct[PhaseUpload])
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	runTicks(pc, 12, 10*time.Microsecond)

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v exceeds max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(0).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with 16ms frames, got %v", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			PhaseEmitters:  5,
			PhaseDiffusion: 80,
			PhaseUpload:    10,
			PhaseTelemetry: 5,
		},
	}

	row := stats.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 1500 {
		t.Errorf("unexpected header fields: %+v", row)
	}
	if row.DiffusionPct != 80 || row.UploadPct != 10 || row.EmittersPct != 5 || row.TelemetryPct != 5 {
		t.Errorf("phase percentages not carried over: %+v", row)
	}
}
