package injector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/core/events/bus"
	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/game"
	"github.com/zeusync/horde/internal/server"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideEngine,
	ProvideServer,
	wire.Bind(new(server.Engine), new(*game.Engine)),
	wire.Struct(new(App), "*"),
)

// App is the headless runner: the engine loop plus the snapshot feed.
type App struct {
	Config config.Config
	Logger log.Log
	Events bus.EventBus
	Engine *game.Engine
	Server *server.Server
}

func ProvideLogger(cfg config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level: %w", config.ErrInvalidConfig, err)
	}
	return log.NewWithOptions(log.Options{Level: level, Console: cfg.LogConsole, Sampling: true}), nil
}

func ProvideBus(logger log.Log) bus.EventBus {
	b := bus.New()
	b.AddObserver(&eventJournal{logger: logger.With(log.String("component", "events"))})
	return b
}

func ProvideEngine(cfg config.Config, logger log.Log, events bus.EventBus) (*game.Engine, error) {
	return game.NewEngine(cfg, logger, events)
}

func ProvideServer(engine server.Engine, cfg config.Config, logger log.Log) *server.Server {
	return server.NewServer(engine, cfg.Feed, logger)
}

// Run drives the engine and serves the feed until ctx is cancelled or either
// of them fails.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("Starting horde", log.String("session", a.Engine.Session()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Engine.Run(ctx) })
	g.Go(func() error { return a.Server.Run(ctx) })
	err := g.Wait()

	m := a.Engine.Metrics()
	a.Logger.Info("Horde stopped",
		log.Uint64("ticks", m.Tick),
		log.Uint64("killed", m.Stats.Killed),
		log.Uint64("shots", m.Stats.ShotsFired),
		log.Duration("avg_tick", m.Pipeline.AverageTickTime))
	_ = a.Logger.Sync()
	return err
}

// eventJournal traces bus traffic at debug level and warns about failing
// handlers.
type eventJournal struct {
	logger log.Log
}

func (j *eventJournal) OnPublish(eventType string, event bus.Event) {
	if j.logger.GetLevel() > log.LevelDebug {
		return
	}
	j.logger.Debug("Event published",
		log.String("type", eventType),
		log.Any("data", event.Data()))
}

func (j *eventJournal) OnDelivered(eventType string, handlers int, err error, took time.Duration) {
	if err == nil {
		return
	}
	j.logger.Warn("Event handler failed",
		log.String("type", eventType),
		log.Int("handlers", handlers),
		log.Duration("took", took),
		log.Error(err))
}
