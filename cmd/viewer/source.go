package main

import (
	"context"
	"time"

	"github.com/zeusync/horde/internal/core/events/bus"
	"github.com/zeusync/horde/internal/core/systems/physics"
	"github.com/zeusync/horde/internal/game"
	"github.com/zeusync/horde/sdk/go/client"
)

// source is where the viewer gets frames from and sends input to.
type source interface {
	// Advance is called once per ebiten update.
	Advance() error
	Snapshot() (game.Snapshot, bool)
	SetCursor(p physics.Vec2)
	SetActive(active bool)
	// SetSlots changes the player's slot count; remote feeds ignore it.
	SetSlots(n int)
	// ToggleSystem pauses or resumes a pipeline system; remote feeds ignore it.
	ToggleSystem(name string)
	Close() error
}

// localSource runs an engine in-process, one tick per frame.
type localSource struct {
	engine *game.Engine
	step   time.Duration
	events bus.EventBus
	kills  bus.Subscription
}

func (s *localSource) Advance() error { return s.engine.Step(s.step) }

func (s *localSource) Snapshot() (game.Snapshot, bool) { return s.engine.Snapshot(), true }

func (s *localSource) SetCursor(p physics.Vec2) {
	s.engine.UpdateInput(func(in *game.Input) { in.Cursor = &p })
}

func (s *localSource) SetActive(active bool) {
	s.engine.UpdateInput(func(in *game.Input) { in.Active = active })
}

func (s *localSource) SetSlots(n int) {
	s.engine.Do(func(st *game.State) { st.Player.SlotCount = n })
}

func (s *localSource) ToggleSystem(name string) {
	_ = s.engine.SetSystemEnabled(name, !s.engine.SystemEnabled(name))
}

func (s *localSource) Close() error {
	if s.kills != nil {
		return s.events.Unsubscribe(s.kills)
	}
	return nil
}

// remoteSource mirrors a horde runner through the snapshot feed.
type remoteSource struct {
	client *client.Client
	cursor physics.Vec2
}

func dialRemote(ctx context.Context, c *client.Client) (*remoteSource, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return &remoteSource{client: c}, nil
}

func (s *remoteSource) Advance() error { return nil }

func (s *remoteSource) Snapshot() (game.Snapshot, bool) {
	snap, err := s.client.Latest()
	return snap, err == nil
}

func (s *remoteSource) SetCursor(p physics.Vec2) {
	if p == s.cursor {
		return
	}
	s.cursor = p
	_ = s.client.SendInput(&p, nil)
}

func (s *remoteSource) SetActive(active bool) { _ = s.client.SendInput(nil, &active) }

func (s *remoteSource) SetSlots(int) {}

func (s *remoteSource) ToggleSystem(string) {}

func (s *remoteSource) Close() error { return s.client.Close() }
