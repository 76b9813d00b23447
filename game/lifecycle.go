package game

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/voxsmoke/components"
	"github.com/pthm-cable/voxsmoke/config"
)

// spawnConfiguredEmitters creates the emitters listed in the config.
func (g *Game) spawnConfiguredEmitters(cfg *config.Config) {
	for _, ec := range cfg.Emitters {
		g.AddEmitter(vec3(ec.Position), float32(ec.Rate), ec.Ticks)
	}
}

// AddEmitter creates a smoke emitter at pos. A non-positive ticks value makes
// it emit forever.
func (g *Game) AddEmitter(pos mgl32.Vec3, rate float32, ticks int) ecs.Entity {
	p := components.Position{X: pos.X(), Y: pos.Y(), Z: pos.Z()}
	em := components.Emitter{
		Rate:      rate,
		Remaining: int32(ticks),
		Forever:   ticks <= 0,
	}
	g.emitterCount++
	return g.emitterMap.NewEntity(&p, &em)
}

// updateEmitters injects smoke from every emitter and removes expired ones.
func (g *Game) updateEmitters() {
	var expired []ecs.Entity

	query := g.emitterFilter.Query()
	for query.Next() {
		pos, em := query.Get()
		g.engine.AddSmoke(mgl32.Vec3{pos.X, pos.Y, pos.Z}, em.Rate)

		if em.Forever {
			continue
		}
		em.Remaining--
		if em.Expired() {
			expired = append(expired, query.Entity())
		}
	}

	// Removal has to wait until the query is done
	for _, e := range expired {
		g.emitterMap.Remove(e)
		g.emitterCount--
	}
}
