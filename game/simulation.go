package game

import (
	"github.com/pthm-cable/voxsmoke/telemetry"
)

// Update handles input and runs the configured number of simulation steps.
func (g *Game) Update() {
	g.handleInput()
	g.runSteps()
}

// UpdateHeadless runs simulation steps without reading input.
func (g *Game) UpdateHeadless() {
	g.runSteps()
}

func (g *Game) runSteps() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep runs a single tick: emitters, diffusion, texture upload and
// telemetry, each timed as its own phase.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseEmitters)
	if !g.paused {
		g.updateEmitters()
	}

	g.perfCollector.StartPhase(telemetry.PhaseDiffusion)
	committed := g.engine.Tick()

	// The texture keeps refreshing while paused so lighting changes still show
	g.perfCollector.StartPhase(telemetry.PhaseUpload)
	g.smokeTex.Upload(&g.light)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	if committed {
		g.recordCycle()
	}

	if !g.paused {
		g.tick++
	}
	g.perfCollector.EndTick()

	g.flushPerf()
}
