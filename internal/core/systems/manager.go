package systems

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/horde/internal/core/observability/log"
)

type entry[W any] struct {
	system  System[W]
	enabled bool
	order   int
	metrics Metrics
}

// Manager runs registered systems in a fixed order: by phase, then by
// priority (highest first), then by registration order. It is driven from a
// single goroutine and does no locking.
type Manager[W any] struct {
	entries []*entry[W]
	byName  map[string]*entry[W]
	seq     int
	metrics ManagerMetrics
	logger  log.Log
}

func NewManager[W any](logger log.Log) *Manager[W] {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager[W]{
		byName: make(map[string]*entry[W]),
		logger: logger.With(log.String("component", "systems")),
	}
}

// RegisterSystem adds s to the pipeline.
func (m *Manager[W]) RegisterSystem(s System[W]) error {
	if s == nil || s.Name() == "" {
		return ErrInvalidSystem
	}
	if _, ok := m.byName[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	e := &entry[W]{system: s, enabled: true, order: m.seq}
	m.seq++
	m.entries = append(m.entries, e)
	m.byName[s.Name()] = e
	slices.SortStableFunc(m.entries, func(a, b *entry[W]) int {
		if a.system.Phase() != b.system.Phase() {
			return int(a.system.Phase()) - int(b.system.Phase())
		}
		if a.system.Priority() != b.system.Priority() {
			return int(b.system.Priority()) - int(a.system.Priority())
		}
		return a.order - b.order
	})
	m.logger.Debug("system registered",
		log.String("system", s.Name()),
		log.String("phase", s.Phase().String()),
		log.Int("priority", int(s.Priority())))
	return nil
}

func (m *Manager[W]) EnableSystem(name string) error  { return m.setEnabled(name, true) }
func (m *Manager[W]) DisableSystem(name string) error { return m.setEnabled(name, false) }

func (m *Manager[W]) setEnabled(name string, enabled bool) error {
	e, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	if e.enabled != enabled {
		m.logger.Info("system toggled", log.String("system", name), log.Bool("enabled", enabled))
	}
	e.enabled = enabled
	return nil
}

// IsEnabled reports whether name is registered and enabled.
func (m *Manager[W]) IsEnabled(name string) bool {
	e, ok := m.byName[name]
	return ok && e.enabled
}

// ExecutionOrder returns system names in the order Update runs them.
func (m *Manager[W]) ExecutionOrder() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.system.Name())
	}
	return out
}

// Update runs every enabled system once. A failing system does not stop the
// tick; all errors are joined and returned.
func (m *Manager[W]) Update(dt time.Duration, world W) error {
	start := time.Now()
	var all error
	for _, e := range m.entries {
		if !e.enabled {
			continue
		}
		t0 := time.Now()
		err := e.system.Update(dt, world)
		e.metrics.record(time.Since(t0), err)
		if err != nil {
			m.logger.Error("system update failed",
				log.String("system", e.system.Name()),
				log.Error(err))
			all = errors.Join(all, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	m.recordTick(time.Since(start))
	return all
}

func (m *Manager[W]) recordTick(took time.Duration) {
	mm := &m.metrics
	mm.Ticks++
	mm.LastTickTime = took
	if took > mm.MaxTickTime {
		mm.MaxTickTime = took
	}
	if mm.Ticks == 1 {
		mm.AverageTickTime = took
	} else {
		mm.AverageTickTime = time.Duration(float64(mm.AverageTickTime)*0.9 + float64(took)*0.1)
	}
}

// GetMetrics returns pipeline-wide metrics.
func (m *Manager[W]) GetMetrics() ManagerMetrics {
	out := m.metrics
	out.Systems = len(m.entries)
	for _, e := range m.entries {
		if e.enabled {
			out.EnabledSystems++
		}
	}
	return out
}

// SystemMetrics returns a copy of every system's metrics keyed by name.
func (m *Manager[W]) SystemMetrics() map[string]Metrics {
	out := make(map[string]Metrics, len(m.entries))
	for _, e := range m.entries {
		out[e.system.Name()] = e.metrics
	}
	return out
}
