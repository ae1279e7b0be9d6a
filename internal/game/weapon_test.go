package game

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

func TestWeaponSlotsGrowOnePerTickUpToSlotCount(t *testing.T) {
	st := newTestState(t, func(c *config.Config) {
		c.Player.SlotCount = 3
		c.Player.SlotCapacity = 6
	})
	weapons := NewWeaponSystem(nil)

	for want := 1; want <= 3; want++ {
		tick(t, st, time.Millisecond, weapons)
		require.Len(t, st.Weapons, want)
	}
	tick(t, st, time.Millisecond, weapons)
	assert.Len(t, st.Weapons, 3, "slot count reached")

	for i, w := range st.Weapons {
		assert.Equal(t, i, w.Index)
		assert.Equal(t, st.Config.Weapon.Offsets[i], w.Offset)
		assert.False(t, w.Aiming())
	}
}

func TestWeaponSlotsFillCapacityExactly(t *testing.T) {
	st := newTestState(t, func(c *config.Config) {
		c.Player.SlotCount = 6
		c.Player.SlotCapacity = 6
	})
	weapons := NewWeaponSystem(nil)
	for range 10 {
		tick(t, st, time.Millisecond, weapons)
	}
	assert.Len(t, st.Weapons, 6)
}

func TestWeaponSlotsRefusedWhileCountExceedsCapacity(t *testing.T) {
	cases := []struct {
		count, capacity int
	}{
		{7, 6},
		{4, 3},
		{1, 0},
	}
	for _, tc := range cases {
		st := newTestState(t, func(c *config.Config) {
			c.Player.SlotCount = tc.count
			c.Player.SlotCapacity = tc.capacity
		})
		weapons := NewWeaponSystem(nil)
		for range 10 {
			tick(t, st, time.Millisecond, weapons)
		}
		assert.Empty(t, st.Weapons, "count=%d capacity=%d", tc.count, tc.capacity)
	}
}

func TestWeaponSlotsSurviveCountAboveCapacity(t *testing.T) {
	st := newTestState(t, func(c *config.Config) { c.Player.SlotCount = 2 })
	weapons := NewWeaponSystem(nil)
	for range 3 {
		tick(t, st, time.Millisecond, weapons)
	}
	require.Len(t, st.Weapons, 2)

	st.Player.SlotCount = st.Player.SlotCapacity + 1
	for range 5 {
		tick(t, st, time.Millisecond, weapons)
	}
	assert.Len(t, st.Weapons, 2, "existing slots are kept, none are added")
}

func TestWeaponSlotStatsIncludePlayerBonuses(t *testing.T) {
	st := newTestState(t, func(c *config.Config) {
		c.Player.Stats = config.StatBlock{AttackSpeedPercent: 100, DamageBonus: 5, RangeBonus: 50, PierceBonus: 2}
	})
	tick(t, st, time.Millisecond, NewWeaponSystem(nil))

	require.Len(t, st.Weapons, 1)
	w := st.Weapons[0]
	assert.Equal(t, 50*time.Millisecond, w.Timer.Interval)
	assert.Equal(t, 25.0, w.Damage)
	assert.Equal(t, 250.0, w.Range)
	assert.Equal(t, 3, w.Pierce)
}

func TestExtremeAttackSpeedKeepsTimerPositive(t *testing.T) {
	st := newTestState(t, func(c *config.Config) { c.Player.Stats.AttackSpeedPercent = 1e12 })
	insertHostile(st, 100, 0, math.MaxFloat64)
	pipeline := []System{NewIndexSystem(), NewTargetingSystem(), NewWeaponSystem(nil)}

	require.NotPanics(t, func() {
		for range 3 {
			tick(t, st, time.Millisecond, pipeline...)
		}
	})
	require.Len(t, st.Weapons, 1)
	assert.Equal(t, time.Duration(1), st.Weapons[0].Timer.Interval)
	assert.Equal(t, uint64(3), st.Stats.ShotsFired, "one shot per tick at most")
}

func TestAimGeometry(t *testing.T) {
	right := WeaponSlot{Index: 0, Offset: physics.V2(35, -15)}
	Aim(&right, physics.V2(0, 0), physics.V2(300, 0), 20)

	muzzle := physics.V2(15, -15)
	angle := math.Atan2(15, 285)
	assert.InDelta(t, angle, right.Rotation, 1e-12)
	assert.InDelta(t, muzzle.X+20*math.Cos(angle), right.Pos.X, 1e-9)
	assert.InDelta(t, muzzle.Y+20*math.Sin(angle), right.Pos.Y, 1e-9)
	assert.False(t, right.FlipY)
	assert.True(t, right.Aiming())

	left := WeaponSlot{Index: 1, Offset: physics.V2(-45, -15)}
	Aim(&left, physics.V2(0, 0), physics.V2(-300, 0), 20)
	assert.InDelta(t, math.Atan2(15, -275), left.Rotation, 1e-12)
	assert.True(t, left.FlipY, "target left of the player flips the sprite")
	assert.False(t, left.FlipX)

	Stow(&left, physics.V2(10, 10))
	assert.False(t, left.Aiming())
	assert.Equal(t, physics.V2(-35, -5), left.Pos)
	assert.True(t, left.FlipX, "odd slots are mirrored at rest")
	assert.False(t, left.FlipY)
}

func TestFireCountUnderContinuousAim(t *testing.T) {
	const ticks = 200
	interval := 100 * time.Millisecond
	for _, dt := range []time.Duration{7 * time.Millisecond, 16 * time.Millisecond, time.Second / 60, 30 * time.Millisecond, interval} {
		st := newTestState(t, nil)
		insertHostile(st, 100, 0, math.MaxFloat64)
		pipeline := []System{NewIndexSystem(), NewTargetingSystem(), NewWeaponSystem(nil)}

		for range ticks {
			tick(t, st, dt, pipeline...)
			require.True(t, st.Weapons[0].Aiming())
		}
		want := uint64(ticks * dt / interval)
		assert.Equal(t, want, st.Stats.ShotsFired, "dt=%v", dt)
	}
}

func TestStowedSlotTimerRunsWithoutFiring(t *testing.T) {
	st := newTestState(t, nil)
	insertHostile(st, 1000, 0, 100)
	pipeline := []System{NewIndexSystem(), NewTargetingSystem(), NewWeaponSystem(nil)}

	for range 10 {
		tick(t, st, 50*time.Millisecond, pipeline...)
	}
	assert.False(t, st.Weapons[0].Aiming(), "target out of range")
	assert.Zero(t, st.Stats.ShotsFired)
	assert.Less(t, st.Weapons[0].Timer.Elapsed, st.Weapons[0].Timer.Interval)
}

func TestStaleTargetStowsWeapons(t *testing.T) {
	st := newTestState(t, nil)
	h := st.SpawnHostile(physics.V2(100, 0), 0)
	tick(t, st, 0, NewIndexSystem(), NewTargetingSystem())
	require.Equal(t, h, st.Player.Target.Handle)

	require.True(t, st.Hostiles.Remove(h))
	_, ok := st.Target()
	assert.False(t, ok)

	tick(t, st, st.Config.Weapon.Interval, NewWeaponSystem(nil))
	assert.False(t, st.Weapons[0].Aiming())
	assert.Zero(t, st.Stats.ShotsFired)
}

func TestMultiShotSpreadsAroundBearing(t *testing.T) {
	st := newTestState(t, func(c *config.Config) {
		c.Weapon.BulletsPerShot = 3
		c.Weapon.Spread = 0.1
	})
	insertHostile(st, 100, 0, 100)
	tick(t, st, st.Config.Weapon.Interval, NewIndexSystem(), NewTargetingSystem(), NewWeaponSystem(nil))

	require.Equal(t, 3, st.Projectiles.Len())
	bearing := st.Weapons[0].Rotation
	var rotations []float64
	for _, p := range st.Projectiles.All() {
		rotations = append(rotations, p.Rotation)
		assert.Equal(t, st.Weapons[0].Pos, p.Origin)
	}
	assert.InDeltaSlice(t, []float64{bearing - 0.1, bearing, bearing + 0.1}, rotations, 1e-12)
}
