package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

func newTestState(t *testing.T, tweak func(*config.Config)) *State {
	t.Helper()
	cfg := config.Default()
	if tweak != nil {
		tweak(&cfg)
	}
	require.NoError(t, cfg.Validate())
	return NewState(&cfg, nil)
}

// tick runs the given systems once in order, the way the manager would.
func tick(t *testing.T, st *State, dt time.Duration, systems ...System) {
	t.Helper()
	st.Tick++
	for _, s := range systems {
		require.NoError(t, s.Update(dt, st), s.Name())
	}
}

func insertHostile(st *State, x, y, health float64) {
	st.Hostiles.Insert(Hostile{Pos: physics.V2(x, y), Health: health})
}
