package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/core/events/bus"
	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/core/spatial"
	"github.com/zeusync/horde/internal/core/systems"
)

// maxFrame bounds how much wall time a single Run iteration may simulate
// after a stall.
const maxFrame = 250 * time.Millisecond

// Engine owns one session: the state and the pipeline that advances it.
// Step, SetInput, SetSystemEnabled, Snapshot and Do are safe for concurrent
// use. Bus handlers run inside Step with the engine locked and must not call
// back into it.
type Engine struct {
	cfg     config.Config
	session string
	logger  log.Log
	manager *systems.Manager[*State]

	mu    sync.Mutex
	state *State
}

// Metrics is the engine's runtime telemetry.
type Metrics struct {
	Session  string                     `json:"session"`
	Tick     uint64                     `json:"tick"`
	Pipeline systems.ManagerMetrics     `json:"pipeline"`
	Systems  map[string]systems.Metrics `json:"systems"`
	Index    spatial.Stats              `json:"index"`
	Stats    Stats                      `json:"stats"`
	Hostiles int                        `json:"hostiles"`
	Bullets  int                        `json:"projectiles"`
	// Events is nil when the engine runs without a bus.
	Events *bus.EventBusMetrics `json:"events,omitempty"`
}

// NewEngine validates cfg and assembles the tick pipeline. events may be nil.
func NewEngine(cfg config.Config, logger log.Log, events bus.EventBus) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	session := uuid.NewString()
	logger = logger.With(log.String("session", session))

	e := &Engine{
		cfg:     cfg,
		session: session,
		logger:  logger,
		manager: systems.NewManager[*State](logger),
	}
	e.state = NewState(&e.cfg, events)
	for _, s := range Pipeline(logger) {
		if err := e.manager.RegisterSystem(s); err != nil {
			return nil, fmt.Errorf("register %s: %w", s.Name(), err)
		}
	}
	logger.Info("engine ready",
		log.String("seed", cfg.Seed),
		log.Float64("tick_rate", cfg.TickRate),
		log.Any("pipeline", e.manager.ExecutionOrder()))
	return e, nil
}

func (e *Engine) Session() string { return e.session }

// Step advances the world by one tick of dt. Nothing runs while the input is
// inactive.
func (e *Engine) Step(dt time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state
	if !st.Input.Active {
		return nil
	}
	st.Tick++
	st.Time += dt
	return e.manager.Update(dt, st)
}

// Run steps the engine at the configured tick rate until ctx is cancelled.
// Wall time is accumulated and consumed in whole fixed steps.
func (e *Engine) Run(ctx context.Context) error {
	step := e.cfg.TickDuration()
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	last := time.Now()
	var acc time.Duration
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped", log.Uint64("tick", e.Snapshot().Tick))
			return nil
		case now := <-ticker.C:
			frame := min(now.Sub(last), maxFrame)
			last = now
			acc += frame
			for acc >= step {
				if err := e.Step(step); err != nil {
					e.logger.Warn("tick failed", log.Error(err))
				}
				acc -= step
			}
		}
	}
}

func (e *Engine) SetInput(in Input) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Input = in
}

// UpdateInput applies fn to the current input under the engine lock.
func (e *Engine) UpdateInput(fn func(*Input)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state.Input)
}

// SetSystemEnabled pauses or resumes one pipeline system by name. A disabled
// system is skipped by Step until it is enabled again.
func (e *Engine) SetSystemEnabled(name string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enabled {
		return e.manager.EnableSystem(name)
	}
	return e.manager.DisableSystem(name)
}

func (e *Engine) SystemEnabled(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.IsEnabled(name)
}

// Do runs fn with exclusive access to the state. fn must not retain st.
func (e *Engine) Do(fn func(st *State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.state)
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TakeSnapshot(e.session, e.state)
}

func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := Metrics{
		Session:  e.session,
		Tick:     e.state.Tick,
		Pipeline: e.manager.GetMetrics(),
		Systems:  e.manager.SystemMetrics(),
		Index:    e.state.Index.Stats(),
		Stats:    e.state.Stats,
		Hostiles: e.state.Hostiles.Len(),
		Bullets:  e.state.Projectiles.Len(),
	}
	if e.state.Events != nil {
		events := e.state.Events.GetMetrics()
		m.Events = &events
	}
	return m
}
