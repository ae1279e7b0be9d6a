// Package game implements the combat loop: spawning hostiles, indexing them,
// acquiring the nearest target, aiming and firing weapon slots, moving
// projectiles and resolving hits. Every system receives the *State of the
// current tick explicitly.
package game

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/core/events/bus"
	"github.com/zeusync/horde/internal/core/models"
	"github.com/zeusync/horde/internal/core/spatial"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

type Hostile struct {
	Pos    physics.Vec2
	Health float64
	Speed  float64
	// Damage is the contact damage this hostile would deal. Player health is
	// not simulated, so it is carried for consumers only.
	Damage float64
	// Variant selects a sprite; it has no effect on behaviour.
	Variant int
}

// Depleted reports whether the hostile is due for removal.
func (h *Hostile) Depleted() bool { return h.Health <= 0 }

type Projectile struct {
	Origin    physics.Vec2
	Pos       physics.Vec2
	Direction physics.Vec2
	Rotation  float64
	Damage    float64
	// Pierce is the number of hits left. Zero is terminal.
	Pierce int
	Range  float64
	Slot   int
}

// Traveled is the straight-line distance from the spawn point.
func (p *Projectile) Traveled() float64 { return p.Pos.Distance(p.Origin) }

// NearestTarget is the player's cached view of the closest hostile.
type NearestTarget struct {
	Handle   models.Handle
	Distance float64
}

// NoTarget has a distance that fails every range comparison.
var NoTarget = NearestTarget{Handle: models.NilHandle, Distance: math.Inf(1)}

type Player struct {
	Pos          physics.Vec2
	Speed        float64
	Stats        config.StatBlock
	SlotCount    int
	SlotCapacity int
	Target       NearestTarget
}

type WeaponSlot struct {
	Index  int
	Offset physics.Vec2
	Pos    physics.Vec2
	// Rotation is the aim bearing in radians. Zero means stowed.
	Rotation float64
	FlipX    bool
	FlipY    bool
	Timer    AttackTimer
	Range    float64
	Damage   float64
	Pierce   int
	PerShot  int
}

// Aiming reports whether the slot is tracking a target.
func (w *WeaponSlot) Aiming() bool { return w.Rotation != 0 }

// Input is what the environment feeds into the loop once per tick.
type Input struct {
	// Cursor is the world-space point the player walks toward. Nil holds.
	Cursor *physics.Vec2 `json:"cursor,omitempty"`
	// Active gates the whole pipeline.
	Active bool `json:"active"`
}

type Stats struct {
	Spawned        uint64 `json:"spawned"`
	SpawnFallbacks uint64 `json:"spawn_fallbacks"`
	Killed         uint64 `json:"killed"`
	ShotsFired     uint64 `json:"shots_fired"`
	Hits           uint64 `json:"hits"`
	Expired        uint64 `json:"expired"`
}

// State is the whole mutable world of one session.
type State struct {
	Config      *config.Config
	Player      Player
	Hostiles    *models.Arena[Hostile]
	Projectiles *models.Arena[Projectile]
	Weapons     []WeaponSlot
	Index       *spatial.Index
	Input       Input
	Rand        *rand.Rand
	Tick        uint64
	Time        time.Duration
	Stats       Stats
	// Events may be nil; publishing is then skipped.
	Events bus.EventBus
}

// NewState builds the initial world: one player at the origin, no hostiles.
func NewState(cfg *config.Config, events bus.EventBus) *State {
	s1, s2 := cfg.RandSeed()
	return &State{
		Config: cfg,
		Player: Player{
			Speed:        cfg.Player.Speed,
			Stats:        cfg.Player.Stats,
			SlotCount:    cfg.Player.SlotCount,
			SlotCapacity: cfg.Player.SlotCapacity,
			Target:       NoTarget,
		},
		Hostiles:    models.NewArena[Hostile](cfg.Hostile.PopulationCap),
		Projectiles: models.NewArena[Projectile](256),
		Index:       spatial.New(),
		Input:       Input{Active: true},
		Rand:        rand.New(rand.NewPCG(s1, s2)),
		Events:      events,
	}
}

// Target resolves the player's cached target. A handle destroyed since the
// last index rebuild resolves to no target.
func (s *State) Target() (*Hostile, bool) {
	t := s.Player.Target
	if t.Handle.IsNil() {
		return nil, false
	}
	return s.Hostiles.Get(t.Handle)
}

// SpawnHostile inserts a hostile with the configured baseline stats.
func (s *State) SpawnHostile(pos physics.Vec2, variant int) models.Handle {
	h := s.Hostiles.Insert(Hostile{
		Pos:     pos,
		Health:  s.Config.Hostile.Health,
		Speed:   s.Config.Hostile.Speed,
		Damage:  s.Config.Hostile.Damage,
		Variant: variant,
	})
	s.Stats.Spawned++
	s.publish(EventHostileSpawned, HostileEvent{Hostile: h, Pos: pos})
	return h
}

func (s *State) publish(eventType string, data any) {
	if s.Events == nil {
		return
	}
	// handler errors belong to observers, never to the tick
	_ = s.Events.Publish(bus.NewEvent(eventType, "game", data, map[string]any{"tick": s.Tick}))
}
