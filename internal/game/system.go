package game

import (
	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/core/systems"
)

// System is a pipeline stage operating on *State.
type System = systems.System[*State]

// stage carries the scheduling metadata shared by every game system.
type stage struct {
	name     string
	phase    systems.ExecutionPhase
	priority systems.Priority
}

func (s stage) Name() string                  { return s.name }
func (s stage) Phase() systems.ExecutionPhase { return s.phase }
func (s stage) Priority() systems.Priority    { return s.priority }

// Pipeline returns every system of a tick in registration order. The manager
// orders them by phase and priority:
//
//	player → population → index → targeting → weapons → projectiles → combat → sweep
func Pipeline(logger log.Log) []System {
	return []System{
		NewPlayerSystem(),
		NewPopulationSystem(logger),
		NewIndexSystem(),
		NewTargetingSystem(),
		NewWeaponSystem(logger),
		NewProjectileSystem(),
		NewCombatSystem(),
		NewSweepSystem(logger),
	}
}
