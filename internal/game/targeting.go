package game

import (
	"time"

	"github.com/zeusync/horde/internal/core/spatial"
	"github.com/zeusync/horde/internal/core/systems"
)

// IndexSystem rebuilds the spatial index over the hostiles' positions after
// they have moved for this tick.
type IndexSystem struct {
	stage
	points []spatial.Point
}

func NewIndexSystem() *IndexSystem {
	return &IndexSystem{stage: stage{"index", systems.PhasePreUpdate, systems.PriorityNormal}}
}

func (s *IndexSystem) Update(_ time.Duration, st *State) error {
	s.points = s.points[:0]
	for h, e := range st.Hostiles.All() {
		s.points = append(s.points, spatial.Point{Handle: h, Pos: e.Pos})
	}
	st.Index.Rebuild(s.points)
	return nil
}

// TargetingSystem refreshes the player's nearest target. With no hostiles
// the target resets to NoTarget, whose infinite distance is out of every
// weapon's range.
type TargetingSystem struct {
	stage
}

func NewTargetingSystem() *TargetingSystem {
	return &TargetingSystem{stage{"targeting", systems.PhaseUpdate, systems.PriorityHighest}}
}

func (s *TargetingSystem) Update(_ time.Duration, st *State) error {
	m, ok := st.Index.Nearest(st.Player.Pos)
	if !ok {
		st.Player.Target = NoTarget
		return nil
	}
	st.Player.Target = NearestTarget{Handle: m.Handle, Distance: m.Distance}
	return nil
}
