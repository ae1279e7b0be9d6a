package game

import (
	"github.com/zeusync/horde/internal/core/models"
)

// Snapshot is a read-only copy of the world for renderers and feeds.
type Snapshot struct {
	Session     string           `json:"session"`
	Tick        uint64           `json:"tick"`
	Active      bool             `json:"active"`
	Player      PlayerView       `json:"player"`
	Hostiles    []HostileView    `json:"hostiles"`
	Weapons     []WeaponView     `json:"weapons"`
	Projectiles []ProjectileView `json:"projectiles"`
	Stats       Stats            `json:"stats"`
}

type PlayerView struct {
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Target *models.Handle `json:"target,omitempty"`
	// TargetDistance is omitted without a target: JSON cannot carry +Inf.
	TargetDistance *float64 `json:"target_distance,omitempty"`
}

type HostileView struct {
	ID      models.Handle `json:"id"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Health  float64       `json:"health"`
	Variant int           `json:"variant"`
}

type WeaponView struct {
	Slot     int     `json:"slot"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	FlipX    bool    `json:"flip_x"`
	FlipY    bool    `json:"flip_y"`
}

type ProjectileView struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// TakeSnapshot copies the state. It must be called from the goroutine that
// owns st.
func TakeSnapshot(session string, st *State) Snapshot {
	snap := Snapshot{
		Session:     session,
		Tick:        st.Tick,
		Active:      st.Input.Active,
		Player:      PlayerView{X: st.Player.Pos.X, Y: st.Player.Pos.Y},
		Hostiles:    make([]HostileView, 0, st.Hostiles.Len()),
		Weapons:     make([]WeaponView, 0, len(st.Weapons)),
		Projectiles: make([]ProjectileView, 0, st.Projectiles.Len()),
		Stats:       st.Stats,
	}
	if _, ok := st.Target(); ok {
		h, d := st.Player.Target.Handle, st.Player.Target.Distance
		snap.Player.Target, snap.Player.TargetDistance = &h, &d
	}
	for h, e := range st.Hostiles.All() {
		snap.Hostiles = append(snap.Hostiles, HostileView{ID: h, X: e.Pos.X, Y: e.Pos.Y, Health: e.Health, Variant: e.Variant})
	}
	for _, w := range st.Weapons {
		snap.Weapons = append(snap.Weapons, WeaponView{
			Slot: w.Index, X: w.Pos.X, Y: w.Pos.Y, Rotation: w.Rotation, FlipX: w.FlipX, FlipY: w.FlipY,
		})
	}
	for _, p := range st.Projectiles.All() {
		snap.Projectiles = append(snap.Projectiles, ProjectileView{X: p.Pos.X, Y: p.Pos.Y, Rotation: p.Rotation})
	}
	return snap
}
