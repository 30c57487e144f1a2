package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, ch <-chan []Notification) []Notification {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "channel closed")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func TestPushAndExpire(t *testing.T) {
	bus := NewBus(30*time.Millisecond, nil)
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	assert.Empty(t, receive(t, ch), "initial snapshot")

	n := bus.Push(LevelSuccess, "Saved", "Broilers Test")
	assert.NotEmpty(t, n.ID)

	snapshot := receive(t, ch)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Saved", snapshot[0].Title)
	assert.Len(t, bus.Active(), 1)

	assert.Empty(t, receive(t, ch), "expired")
	assert.Empty(t, bus.Active())
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	bus := NewBus(time.Minute, nil)
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	bus.Push(LevelInfo, "one", "")
	bus.Push(LevelInfo, "two", "")
	bus.Push(LevelError, "three", "")

	snapshot := receive(t, ch)
	assert.Len(t, snapshot, 3)
}

func TestUnsubscribeAndClose(t *testing.T) {
	bus := NewBus(time.Minute, nil)

	ch, unsubscribe := bus.Subscribe()
	receive(t, ch)
	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	other, _ := bus.Subscribe()
	receive(t, other)
	bus.Push(LevelInfo, "pending", "")
	bus.Close()
	bus.Close()

	for range other {
	}
	assert.Empty(t, bus.Active())

	late, _ := bus.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing to a closed bus yields a closed channel")

	bus.Push(LevelInfo, "ignored", "")
	assert.Empty(t, bus.Active())
}
