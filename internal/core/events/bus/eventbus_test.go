package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		_, err := b.Subscribe("hostile.killed", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(NewEvent("hostile.killed", "test", nil, nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "src", nil, nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	assert.NoError(t, b.Publish(NewEvent("y", "src", nil, nil)), "no subscribers")
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	n := 0
	sub, err := b.Subscribe("e", func(Event) error { n++; return nil })
	require.NoError(t, err)
	require.NoError(t, b.Publish(NewEvent("e", "s", nil, nil)))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Publish(NewEvent("e", "s", nil, nil)))
	assert.Equal(t, 1, n)
	assert.False(t, sub.IsActive())
	assert.NotEmpty(t, sub.ID())
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	assert.Zero(t, b.GetMetrics().Published, "metrics stay zero without observers")

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.AddObserver(obs)
	_, _ = b.Subscribe("e", func(Event) error { return errors.New("nope") })
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	assert.Equal(t, 2, obs.publishCount, "observers are registered once")
	assert.Equal(t, 3, obs.deliveredCount)
	assert.Error(t, obs.lastErr)
	assert.Equal(t, uint64(1), b.GetMetrics().Errors)
}

func TestNilArguments(t *testing.T) {
	b := New()
	_, err := b.Subscribe("e", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	assert.ErrorIs(t, b.Publish(nil), ErrNilEvent)
	assert.NoError(t, b.Unsubscribe(nil))
}
