// Command viewer renders a horde session with ebiten, either running the
// engine in-process or mirroring a runner's websocket feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/core/events/bus"
	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/game"
	"github.com/zeusync/horde/sdk/go/client"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	remote := flag.String("remote", "", "websocket feed to mirror, e.g. ws://127.0.0.1:8080/ws")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := log.NewWithOptions(log.Options{Level: log.LevelInfo, Console: true})
	defer func() { _ = logger.Sync() }()

	var (
		src   source
		kills *killFeed
	)
	if *remote != "" {
		ccfg := client.DefaultClientConfig()
		ccfg.ServerURL = *remote
		ctx, cancel := context.WithTimeout(context.Background(), ccfg.ConnectTimeout)
		rs, err := dialRemote(ctx, client.NewClient(ccfg, logger))
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to feed", log.String("url", *remote), log.Error(err))
		}
		src = rs
	} else {
		events := bus.New()
		kills = newKillFeed()
		sub, err := events.Subscribe(game.EventHostileKilled, kills.onKill)
		if err != nil {
			logger.Fatal("Failed to subscribe", log.Error(err))
		}
		engine, err := game.NewEngine(cfg, logger, events)
		if err != nil {
			logger.Fatal("Failed to create engine", log.Error(err))
		}
		src = &localSource{engine: engine, step: cfg.TickDuration(), events: events, kills: sub}
		ebiten.SetTPS(int(cfg.TickRate))
	}
	defer func() { _ = src.Close() }()

	v := newViewer(cfg, src, kills)
	ebiten.SetWindowSize(int(cfg.Field.Size.X)*2/3, int(cfg.Field.Size.Y)*2/3)
	ebiten.SetWindowTitle("horde")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		logger.Error("Viewer stopped", log.Error(err))
	}
}

// killFeed remembers where hostiles died recently so the viewer can flash
// them.
type killFeed struct {
	marks []killMark
}

type killMark struct {
	x, y float64
	at   time.Time
}

func newKillFeed() *killFeed { return &killFeed{} }

func (k *killFeed) onKill(ev bus.Event) error {
	if e, ok := ev.Data().(game.HostileEvent); ok {
		k.marks = append(k.marks, killMark{x: e.Pos.X, y: e.Pos.Y, at: ev.Timestamp()})
	}
	return nil
}

// recent drops marks older than ttl and returns the rest.
func (k *killFeed) recent(now time.Time, ttl time.Duration) []killMark {
	i := 0
	for i < len(k.marks) && now.Sub(k.marks[i].at) > ttl {
		i++
	}
	k.marks = k.marks[i:]
	return k.marks
}
