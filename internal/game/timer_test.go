package game

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttackInterval(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, base, AttackInterval(base, 0))
	assert.Equal(t, 50*time.Millisecond, AttackInterval(base, 100))
	assert.Equal(t, 75*time.Millisecond, AttackInterval(base, 100.0/3))
	assert.Equal(t, 150*time.Millisecond, AttackInterval(base, -50))
	assert.Equal(t, 200*time.Millisecond, AttackInterval(base, -100))
	assert.Equal(t, 500*time.Millisecond, AttackInterval(base, -400))
}

func TestAttackIntervalIsClamped(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, time.Duration(1), AttackInterval(base, 1e12))
	assert.Equal(t, time.Duration(math.MaxInt64), AttackInterval(base, -1e30))
}

func TestZeroIntervalTimerFiresEveryCall(t *testing.T) {
	var timer AttackTimer
	assert.NotPanics(t, func() {
		assert.True(t, timer.Advance(time.Millisecond))
		assert.True(t, timer.Advance(0))
	})
	assert.Zero(t, timer.Elapsed)
}

func TestAttackTimerCarriesOvershoot(t *testing.T) {
	timer := AttackTimer{Interval: 100 * time.Millisecond}
	var fired []int
	for i := 1; i <= 10; i++ {
		if timer.Advance(30 * time.Millisecond) {
			fired = append(fired, i)
		}
	}
	// 120ms, 210ms and 300ms are the first three crossings.
	assert.Equal(t, []int{4, 7, 10}, fired)
	assert.Equal(t, time.Duration(0), timer.Elapsed)
}

func TestAttackTimerFiresOncePerCall(t *testing.T) {
	timer := AttackTimer{Interval: 100 * time.Millisecond}
	assert.True(t, timer.Advance(350*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, timer.Elapsed)
	assert.True(t, timer.Advance(50*time.Millisecond))
	assert.False(t, timer.Advance(50*time.Millisecond))
}
