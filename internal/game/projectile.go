package game

import (
	"math"
	"time"

	"github.com/zeusync/horde/internal/core/systems"
)

// rangeTolerance absorbs float drift in the traveled distance.
const rangeTolerance = 1e-9

func reachedRange(traveled, limit float64) bool {
	return traveled >= limit-rangeTolerance*math.Max(1, limit)
}

// ProjectileSystem moves projectiles and marks the ones past their range as
// spent. Removal happens in the sweep.
type ProjectileSystem struct {
	stage
}

func NewProjectileSystem() *ProjectileSystem {
	return &ProjectileSystem{stage{"projectiles", systems.PhaseUpdate, systems.PriorityNormal}}
}

func (s *ProjectileSystem) Update(_ time.Duration, st *State) error {
	speed := st.Config.Bullet.Speed
	for h, p := range st.Projectiles.All() {
		if p.Pierce <= 0 {
			continue
		}
		p.Pos = p.Pos.Add(p.Direction.Scale(speed))
		if reachedRange(p.Traveled(), p.Range) {
			p.Pierce = 0
			st.Stats.Expired++
			st.publish(EventProjectileExpired, ProjectileEvent{Projectile: h, Slot: p.Slot, Pos: p.Pos})
		}
	}
	return nil
}
