package game

import (
	"time"

	"github.com/zeusync/horde/internal/core/models"
	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/core/systems"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

// PopulationSystem keeps the hostile population topped up and walks every
// hostile one step toward the player.
type PopulationSystem struct {
	stage
	logger  log.Log
	elapsed time.Duration
}

func NewPopulationSystem(logger log.Log) *PopulationSystem {
	if logger == nil {
		logger = log.NewNop()
	}
	return &PopulationSystem{
		stage:  stage{"population", systems.PhasePreUpdate, systems.PriorityHigh},
		logger: logger.With(log.String("system", "population")),
	}
}

func (s *PopulationSystem) Update(dt time.Duration, st *State) error {
	cfg := st.Config.Hostile

	s.elapsed += dt
	for s.elapsed >= cfg.SpawnInterval {
		s.elapsed -= cfg.SpawnInterval
		s.spawnBatch(st)
	}

	target := st.Player.Pos
	for _, h := range st.Hostiles.All() {
		h.Pos = physics.StepToward(h.Pos, target, h.Speed)
	}
	return nil
}

func (s *PopulationSystem) spawnBatch(st *State) {
	cfg := st.Config.Hostile
	n := min(cfg.SpawnPerInterval, cfg.PopulationCap-st.Hostiles.Len())
	for range max(n, 0) {
		pos, sampled := SpawnPosition(st)
		if !sampled {
			st.Stats.SpawnFallbacks++
			s.logger.Debug("spawn sampling exhausted, using fallback",
				log.Float64("x", pos.X), log.Float64("y", pos.Y))
		}
		st.SpawnHostile(pos, st.Rand.IntN(cfg.Variants))
	}
}

// SpawnPosition samples a point inside the field at least MinSpawnDistance
// from the player. Sampling gives up after MaxSpawnAttempts; the last sample
// is then pushed out to MinSpawnDistance along its bearing from the player
// and clamped to the field. The second result reports whether sampling
// succeeded.
func SpawnPosition(st *State) (physics.Vec2, bool) {
	cfg := st.Config.Hostile
	half := st.Config.Field.HalfExtents()
	player := st.Player.Pos

	var p physics.Vec2
	for range cfg.MaxSpawnAttempts {
		p = physics.V2((st.Rand.Float64()*2-1)*half.X, (st.Rand.Float64()*2-1)*half.Y)
		if p.Distance(player) >= cfg.MinSpawnDistance {
			return p, true
		}
	}

	dir, ok := p.Sub(player).Normalize()
	if !ok {
		dir = physics.V2(1, 0)
	}
	return player.Add(dir.Scale(cfg.MinSpawnDistance)).Clamp(half.Scale(-1), half), false
}

// SweepSystem is the single place entities are destroyed: depleted hostiles
// and spent projectiles leave the arenas at the end of the tick.
type SweepSystem struct {
	stage
	logger log.Log
}

func NewSweepSystem(logger log.Log) *SweepSystem {
	if logger == nil {
		logger = log.NewNop()
	}
	return &SweepSystem{
		stage:  stage{"sweep", systems.PhaseLateUpdate, systems.PriorityNormal},
		logger: logger.With(log.String("system", "sweep")),
	}
}

func (s *SweepSystem) Update(_ time.Duration, st *State) error {
	killed := st.Hostiles.RemoveFunc(func(h models.Handle, e *Hostile) bool {
		if !e.Depleted() {
			return false
		}
		st.publish(EventHostileKilled, HostileEvent{Hostile: h, Pos: e.Pos})
		return true
	})
	removed := st.Projectiles.RemoveFunc(func(h models.Handle, p *Projectile) bool {
		if p.Pierce > 0 {
			return false
		}
		st.publish(EventProjectileRemoved, ProjectileEvent{Projectile: h, Slot: p.Slot, Pos: p.Pos})
		return true
	})

	st.Stats.Killed += uint64(len(killed))
	if len(killed) > 0 {
		s.logger.Debug("hostiles killed",
			log.Int("count", len(killed)),
			log.Int("alive", st.Hostiles.Len()),
			log.Int("projectiles_removed", len(removed)))
	}
	return nil
}
