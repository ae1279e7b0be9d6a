package systems

import "time"

// System is one stage of the tick pipeline. W is the world type the
// systems operate on; every system receives it explicitly instead of reading
// ambient globals.
type System[W any] interface {
	Name() string
	Phase() ExecutionPhase
	Priority() Priority
	Update(dt time.Duration, world W) error
}

// Priority orders systems inside a phase. Higher priorities run first.
type Priority uint16

// System priorities
const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs within a tick. Phases run in
// ascending order.
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
	PhaseLateUpdate
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseLateUpdate:
		return "late_update"
	default:
		return "unknown"
	}
}
