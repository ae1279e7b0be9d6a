package game

import (
	"time"

	"github.com/zeusync/horde/internal/core/systems"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

// PlayerSystem walks the player toward the cursor. Inside the minimum cursor
// distance the player holds still so it does not jitter around the pointer.
type PlayerSystem struct {
	stage
}

func NewPlayerSystem() *PlayerSystem {
	return &PlayerSystem{stage{"player", systems.PhasePreUpdate, systems.PriorityHighest}}
}

func (s *PlayerSystem) Update(_ time.Duration, st *State) error {
	cursor := st.Input.Cursor
	if cursor == nil {
		return nil
	}
	p := &st.Player
	if p.Pos.Distance(*cursor) <= st.Config.Player.MinCursorDistance {
		return nil
	}
	p.Pos = physics.StepToward(p.Pos, *cursor, p.Speed)
	return nil
}
