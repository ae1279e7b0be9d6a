package game

import (
	"github.com/zeusync/horde/internal/core/models"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

// Event types published on the bus during a tick.
const (
	EventHostileSpawned    = "hostile.spawned"
	EventHostileKilled     = "hostile.killed"
	EventWeaponCreated     = "weapon.created"
	EventProjectileFired   = "projectile.fired"
	EventProjectileHit     = "projectile.hit"
	EventProjectileExpired = "projectile.expired"
	EventProjectileRemoved = "projectile.removed"
)

type HostileEvent struct {
	Hostile models.Handle
	Pos     physics.Vec2
}

type WeaponEvent struct {
	Slot   int
	Range  float64
	Damage float64
	Pierce int
}

type ProjectileEvent struct {
	Projectile models.Handle
	Slot       int
	Pos        physics.Vec2
}

type HitEvent struct {
	Projectile models.Handle
	Hostile    models.Handle
	Damage     float64
	HealthLeft float64
	PierceLeft int
}
