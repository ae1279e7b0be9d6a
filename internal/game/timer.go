package game

import (
	"math"
	"time"
)

// AttackTimer accumulates tick time toward the next shot.
type AttackTimer struct {
	Elapsed  time.Duration
	Interval time.Duration
}

// Advance adds dt and reports whether the interval elapsed. The overshoot
// carries into the next cycle so the cadence does not depend on the tick
// size, but it is kept below one interval: one call fires at most once.
func (t *AttackTimer) Advance(dt time.Duration) bool {
	t.Elapsed += dt
	if t.Elapsed < t.Interval {
		return false
	}
	if t.Interval <= 0 {
		t.Elapsed = 0
		return true
	}
	t.Elapsed = (t.Elapsed - t.Interval) % t.Interval
	return true
}

// AttackInterval scales a base fire interval by an attack-speed percentage.
// Non-negative percentages shorten it to base*100/(100+p); negative ones
// lengthen it to base*(100-p)/100, so +100 halves and -100 doubles. The
// result is clamped to [1ns, MaxInt64].
func AttackInterval(base time.Duration, percent float64) time.Duration {
	var factor float64
	if percent >= 0 {
		factor = 100 / (100 + percent)
	} else {
		factor = (100 - percent) / 100
	}
	d := math.Round(float64(base) * factor)
	switch {
	case d < 1:
		return 1
	case d >= math.MaxInt64:
		return math.MaxInt64
	}
	return time.Duration(d)
}
