package main

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

const (
	playerRadius     = 16
	hostileRadius    = 12
	projectileRadius = 3
	weaponLength     = 22
	killFlash        = 300 * time.Millisecond
)

var (
	variantColors = []color.Color{colornames.Crimson, colornames.Darkorange, colornames.Mediumpurple}
	digitKeys     = []ebiten.Key{
		ebiten.Key0, ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
		ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
)

type viewer struct {
	cfg    config.Config
	src    source
	kills  *killFeed
	active bool
	width  int
	height int
}

func newViewer(cfg config.Config, src source, kills *killFeed) *viewer {
	return &viewer{
		cfg:    cfg,
		src:    src,
		kills:  kills,
		active: true,
		width:  int(cfg.Field.Size.X),
		height: int(cfg.Field.Size.Y),
	}
}

// toScreen maps world coordinates (origin centred, y up) to pixels.
func (v *viewer) toScreen(x, y float64) (float32, float32) {
	return float32(x + float64(v.width)/2), float32(float64(v.height)/2 - y)
}

func (v *viewer) toWorld(sx, sy int) physics.Vec2 {
	return physics.V2(float64(sx)-float64(v.width)/2, float64(v.height)/2-float64(sy))
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.active = !v.active
		v.src.SetActive(v.active)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.src.ToggleSystem("population")
	}
	for n, k := range digitKeys {
		if inpututil.IsKeyJustPressed(k) {
			v.src.SetSlots(n)
		}
	}
	v.src.SetCursor(v.toWorld(ebiten.CursorPosition()))
	return v.src.Advance()
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)

	half := v.cfg.Field.HalfExtents()
	fx, fy := v.toScreen(-half.X, half.Y)
	vector.StrokeRect(screen, fx, fy, float32(half.X*2), float32(half.Y*2), 2, colornames.Slategray, false)

	snap, ok := v.src.Snapshot()
	if !ok {
		text.Draw(screen, "waiting for feed...", basicfont.Face7x13, 20, 30, colornames.White)
		return
	}

	if v.kills != nil {
		now := time.Now()
		for _, m := range v.kills.recent(now, killFlash) {
			x, y := v.toScreen(m.x, m.y)
			r := float32(hostileRadius) * (1 + 2*float32(now.Sub(m.at))/float32(killFlash))
			vector.StrokeCircle(screen, x, y, r, 2, colornames.Gold, true)
		}
	}

	for _, h := range snap.Hostiles {
		x, y := v.toScreen(h.X, h.Y)
		clr := variantColors[h.Variant%len(variantColors)]
		vector.DrawFilledCircle(screen, x, y, hostileRadius, clr, true)
		frac := float32(math.Max(0, h.Health/v.cfg.Hostile.Health))
		vector.DrawFilledRect(screen, x-hostileRadius, y-hostileRadius-6, 2*hostileRadius*frac, 3, colornames.Limegreen, false)
	}

	px, py := v.toScreen(snap.Player.X, snap.Player.Y)
	vector.DrawFilledCircle(screen, px, py, playerRadius, colornames.Cornflowerblue, true)
	if snap.Player.Target != nil {
		for _, h := range snap.Hostiles {
			if h.ID == *snap.Player.Target {
				tx, ty := v.toScreen(h.X, h.Y)
				vector.StrokeCircle(screen, tx, ty, hostileRadius+4, 1.5, colornames.White, true)
				break
			}
		}
	}

	for _, w := range snap.Weapons {
		x, y := v.toScreen(w.X, w.Y)
		angle := w.Rotation
		if angle == 0 && w.FlipX {
			angle = math.Pi
		}
		// screen y grows downward
		ex, ey := x+weaponLength*float32(math.Cos(angle)), y-weaponLength*float32(math.Sin(angle))
		vector.StrokeLine(screen, x, y, ex, ey, 5, colornames.Lightgray, true)
	}

	for _, p := range snap.Projectiles {
		x, y := v.toScreen(p.X, p.Y)
		vector.DrawFilledCircle(screen, x, y, projectileRadius, colornames.Yellow, true)
	}

	status := "running"
	if !snap.Active {
		status = "paused"
	}
	hud := fmt.Sprintf("tick %d  %s  tps %.0f\nhostiles %d  weapons %d  projectiles %d\nkilled %d  shots %d  hits %d\n[space] pause  [h] freeze horde  [0-9] weapon slots",
		snap.Tick, status, ebiten.ActualTPS(),
		len(snap.Hostiles), len(snap.Weapons), len(snap.Projectiles),
		snap.Stats.Killed, snap.Stats.ShotsFired, snap.Stats.Hits)
	text.Draw(screen, hud, basicfont.Face7x13, 20, 30, colornames.White)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return v.width, v.height
}
