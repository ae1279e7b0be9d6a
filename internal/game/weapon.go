package game

import (
	"time"

	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/core/systems"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

// WeaponSystem owns the player's weapon slots. Every tick it creates at most
// one missing slot, aims each slot at the player's target and fires the
// slots whose timer elapsed. No slot is created while the slot count exceeds
// the slot capacity.
type WeaponSystem struct {
	stage
	logger log.Log
}

func NewWeaponSystem(logger log.Log) *WeaponSystem {
	if logger == nil {
		logger = log.NewNop()
	}
	return &WeaponSystem{
		stage:  stage{"weapons", systems.PhaseUpdate, systems.PriorityHigh},
		logger: logger.With(log.String("system", "weapons")),
	}
}

func (s *WeaponSystem) Update(dt time.Duration, st *State) error {
	p := &st.Player
	if p.SlotCount <= p.SlotCapacity && len(st.Weapons) < p.SlotCount {
		s.addSlot(st)
	}

	target, hasTarget := st.Target()
	for i := range st.Weapons {
		w := &st.Weapons[i]
		if hasTarget && p.Target.Distance <= w.Range {
			Aim(w, p.Pos, target.Pos, st.Config.Weapon.StandOff)
		} else {
			Stow(w, p.Pos)
		}
	}

	for i := range st.Weapons {
		w := &st.Weapons[i]
		if !w.Timer.Advance(dt) || !w.Aiming() {
			continue
		}
		s.fire(st, w)
	}
	return nil
}

func (s *WeaponSystem) addSlot(st *State) {
	cfg := st.Config.Weapon
	stats := st.Player.Stats
	idx := len(st.Weapons)
	w := WeaponSlot{
		Index:  idx,
		Offset: cfg.Offsets[idx%len(cfg.Offsets)],
		Timer: AttackTimer{
			Interval: AttackInterval(cfg.Interval, stats.AttackSpeedPercent),
		},
		Range:   cfg.Range + stats.RangeBonus,
		Damage:  cfg.Damage + stats.DamageBonus,
		Pierce:  cfg.Pierce + stats.PierceBonus,
		PerShot: cfg.BulletsPerShot,
	}
	Stow(&w, st.Player.Pos)
	st.Weapons = append(st.Weapons, w)

	st.publish(EventWeaponCreated, WeaponEvent{Slot: idx, Range: w.Range, Damage: w.Damage, Pierce: w.Pierce})
	s.logger.Info("weapon slot created",
		log.Int("slot", idx),
		log.Duration("interval", w.Timer.Interval),
		log.Float64("range", w.Range))
}

// Aim points the slot at target. The muzzle is nudged sideways by standOff,
// toward the player for slots on the right and away for slots on the left,
// and the slot then sits standOff units along the bearing from that muzzle.
// The sprite flips vertically when the target is to the player's left.
func Aim(w *WeaponSlot, player, target physics.Vec2, standOff float64) {
	nudge := standOff
	if w.Offset.X > 0 {
		nudge = -standOff
	}
	muzzle := player.Add(w.Offset).Add(physics.V2(nudge, 0))
	angle := target.Sub(muzzle).Angle()

	w.Rotation = angle
	w.Pos = muzzle.Add(physics.FromAngle(angle).Scale(standOff))
	w.FlipX = false
	w.FlipY = player.X > target.X
}

// Stow parks the slot at its rest offset. Odd slots sit on the left side and
// are mirrored.
func Stow(w *WeaponSlot, player physics.Vec2) {
	w.Rotation = 0
	w.Pos = player.Add(w.Offset)
	w.FlipX = w.Index%2 == 1
	w.FlipY = false
}

func (s *WeaponSystem) fire(st *State, w *WeaponSlot) {
	n := max(w.PerShot, 1)
	spread := st.Config.Weapon.Spread
	for k := range n {
		angle := w.Rotation + (float64(k)-float64(n-1)/2)*spread
		h := st.Projectiles.Insert(Projectile{
			Origin:    w.Pos,
			Pos:       w.Pos,
			Direction: physics.FromAngle(angle),
			Rotation:  angle,
			Damage:    w.Damage,
			Pierce:    w.Pierce,
			Range:     w.Range,
			Slot:      w.Index,
		})
		st.Stats.ShotsFired++
		st.publish(EventProjectileFired, ProjectileEvent{Projectile: h, Slot: w.Index, Pos: w.Pos})
	}
}
