// Package config holds every tunable of the simulation. Values default to the
// classic shooter constants and can be overridden from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/horde/internal/core/systems/physics"
)

type Config struct {
	// Seed is hashed into the RNG seed; the same seed replays the same run.
	Seed     string  `yaml:"seed"`
	TickRate float64 `yaml:"tick_rate"`
	LogLevel string  `yaml:"log_level"`
	// LogConsole switches logs to the human readable encoder.
	LogConsole bool          `yaml:"log_console"`
	Field      FieldConfig   `yaml:"field"`
	Player     PlayerConfig  `yaml:"player"`
	Hostile    HostileConfig `yaml:"hostile"`
	Weapon     WeaponConfig  `yaml:"weapon"`
	Bullet     BulletConfig  `yaml:"bullet"`
	Feed       FeedConfig    `yaml:"feed"`
}

// FieldConfig describes the play field centred on the world origin.
type FieldConfig struct {
	Size   physics.Vec2 `yaml:"size"`
	Margin physics.Vec2 `yaml:"margin"`
}

// HalfExtents is the spawnable half-size of the field: (size - margin) / 2.
func (f FieldConfig) HalfExtents() physics.Vec2 {
	return f.Size.Sub(f.Margin).Scale(0.5)
}

type PlayerConfig struct {
	Speed             float64   `yaml:"speed"`
	MinCursorDistance float64   `yaml:"min_cursor_distance"`
	SlotCount         int       `yaml:"slot_count"`
	SlotCapacity      int       `yaml:"slot_capacity"`
	Stats             StatBlock `yaml:"stats"`
}

// StatBlock holds the player's combat modifiers.
type StatBlock struct {
	AttackSpeedPercent float64 `yaml:"attack_speed_percent"`
	DamageBonus        float64 `yaml:"damage_bonus"`
	RangeBonus         float64 `yaml:"range_bonus"`
	PierceBonus        int     `yaml:"pierce_bonus"`
}

type HostileConfig struct {
	PopulationCap    int           `yaml:"population_cap"`
	SpawnPerInterval int           `yaml:"spawn_per_interval"`
	SpawnInterval    time.Duration `yaml:"spawn_interval"`
	Health           float64       `yaml:"health"`
	Speed            float64       `yaml:"speed"`
	Damage           float64       `yaml:"damage"`
	MinSpawnDistance float64       `yaml:"min_spawn_distance"`
	MaxSpawnAttempts int           `yaml:"max_spawn_attempts"`
	Variants         int           `yaml:"variants"`
}

type WeaponConfig struct {
	Offsets        []physics.Vec2 `yaml:"offsets"`
	StandOff       float64        `yaml:"stand_off"`
	Interval       time.Duration  `yaml:"interval"`
	Range          float64        `yaml:"range"`
	Damage         float64        `yaml:"damage"`
	Pierce         int            `yaml:"pierce"`
	BulletsPerShot int            `yaml:"bullets_per_shot"`
	// Spread is the angle in radians between projectiles of one shot.
	Spread float64 `yaml:"spread"`
}

type BulletConfig struct {
	// Speed is in world units per tick.
	Speed float64 `yaml:"speed"`
	// HitRadius defaults to Speed when zero.
	HitRadius float64 `yaml:"hit_radius"`
}

type FeedConfig struct {
	Addr              string        `yaml:"addr"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
	MaxClients        int           `yaml:"max_clients"`
}

// Default returns the stock tuning.
func Default() Config {
	return Config{
		Seed:     "horde",
		TickRate: 60,
		LogLevel: "info",
		Field: FieldConfig{
			Size:   physics.V2(1920, 1080),
			Margin: physics.V2(140, 70),
		},
		Player: PlayerConfig{
			Speed:             2.5,
			MinCursorDistance: 50,
			SlotCount:         1,
			SlotCapacity:      6,
		},
		Hostile: HostileConfig{
			PopulationCap:    500,
			SpawnPerInterval: 5,
			SpawnInterval:    time.Second,
			Health:           100,
			Speed:            1,
			Damage:           1,
			MinSpawnDistance: 200,
			MaxSpawnAttempts: 32,
			Variants:         3,
		},
		Weapon: WeaponConfig{
			Offsets: []physics.Vec2{
				physics.V2(35, -15),
				physics.V2(-45, -15),
				physics.V2(35, 5),
				physics.V2(-45, 5),
				physics.V2(35, 25),
				physics.V2(-45, 25),
			},
			StandOff:       20,
			Interval:       100 * time.Millisecond,
			Range:          200,
			Damage:         20,
			Pierce:         1,
			BulletsPerShot: 1,
			Spread:         0.08,
		},
		Bullet: BulletConfig{
			Speed: 20,
		},
		Feed: FeedConfig{
			Addr:              "127.0.0.1:8080",
			BroadcastInterval: 50 * time.Millisecond,
			MaxClients:        64,
		},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// LoadYAML decodes YAML on top of Default and validates the result. Keys
// missing from the document keep their default values.
func LoadYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// RandSeed derives the two PCG seed words from Seed.
func (c *Config) RandSeed() (uint64, uint64) {
	h := xxhash.Sum64String(c.Seed)
	return h, xxhash.Sum64String(c.Seed + "/stream")
}

// EffectiveHitRadius is the collision radius used by the combat resolver.
func (c *Config) EffectiveHitRadius() float64 {
	if c.Bullet.HitRadius > 0 {
		return c.Bullet.HitRadius
	}
	return c.Bullet.Speed
}

// TickDuration is the fixed simulation step.
func (c *Config) TickDuration() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRate)
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.TickRate > 0, "tick_rate must be positive, got %v", c.TickRate)
	check(c.Field.Size.X > c.Field.Margin.X && c.Field.Size.Y > c.Field.Margin.Y,
		"field size %v must exceed margin %v", c.Field.Size, c.Field.Margin)

	check(c.Player.Speed >= 0, "player.speed must not be negative")
	check(c.Player.SlotCount >= 0, "player.slot_count must not be negative")
	check(c.Player.SlotCapacity >= 0, "player.slot_capacity must not be negative")
	check(!math.IsNaN(c.Player.Stats.AttackSpeedPercent), "player.stats.attack_speed_percent must be a number")

	h := c.Hostile
	check(h.PopulationCap >= 0, "hostile.population_cap must not be negative")
	check(h.SpawnPerInterval >= 0, "hostile.spawn_per_interval must not be negative")
	check(h.SpawnInterval > 0, "hostile.spawn_interval must be positive")
	check(h.Health > 0, "hostile.health must be positive")
	check(h.Speed >= 0, "hostile.speed must not be negative")
	check(h.MaxSpawnAttempts > 0, "hostile.max_spawn_attempts must be positive")
	check(h.Variants > 0, "hostile.variants must be positive")

	w := c.Weapon
	check(len(w.Offsets) > 0, "weapon.offsets must not be empty")
	check(w.Interval > 0, "weapon.interval must be positive")
	check(w.Range > 0, "weapon.range must be positive")
	check(w.Pierce > 0, "weapon.pierce must be positive")
	check(w.BulletsPerShot > 0, "weapon.bullets_per_shot must be positive")
	check(w.Spread >= 0, "weapon.spread must not be negative")

	bonus := c.Player.Stats
	check(w.Damage+bonus.DamageBonus >= 0,
		"weapon.damage plus player.stats.damage_bonus must not be negative, got %v", w.Damage+bonus.DamageBonus)
	check(w.Range+bonus.RangeBonus > 0,
		"weapon.range plus player.stats.range_bonus must be positive, got %v", w.Range+bonus.RangeBonus)
	check(w.Pierce+bonus.PierceBonus > 0,
		"weapon.pierce plus player.stats.pierce_bonus must be positive, got %d", w.Pierce+bonus.PierceBonus)

	check(c.Bullet.Speed > 0, "bullet.speed must be positive")
	check(c.Bullet.HitRadius >= 0, "bullet.hit_radius must not be negative")
	check(c.Feed.BroadcastInterval > 0, "feed.broadcast_interval must be positive")

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
