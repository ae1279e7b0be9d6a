package game

import (
	"time"

	"github.com/zeusync/horde/internal/core/systems"
)

// CombatSystem resolves projectile hits against the index. A projectile hits
// at most once per tick: only its nearest hostile is considered. A hostile
// that stays within the radius over several ticks is hit on each of them.
// Hostiles with depleted health stay hittable until the sweep removes them.
type CombatSystem struct {
	stage
}

func NewCombatSystem() *CombatSystem {
	return &CombatSystem{stage{"combat", systems.PhasePostUpdate, systems.PriorityNormal}}
}

func (s *CombatSystem) Update(_ time.Duration, st *State) error {
	radius := st.Config.EffectiveHitRadius()
	for ph, p := range st.Projectiles.All() {
		if p.Pierce <= 0 {
			continue
		}
		m, ok := st.Index.Nearest(p.Pos)
		if !ok || m.Distance > radius {
			continue
		}
		h, live := st.Hostiles.Get(m.Handle)
		if !live {
			continue
		}
		h.Health -= p.Damage
		p.Pierce--
		st.Stats.Hits++
		st.publish(EventProjectileHit, HitEvent{
			Projectile: ph,
			Hostile:    m.Handle,
			Damage:     p.Damage,
			HealthLeft: h.Health,
			PierceLeft: p.Pierce,
		})
	}
	return nil
}
