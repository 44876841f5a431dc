package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New("kafka")
	assert.Equal(t, "kafka", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerOpening(t *testing.T) {
	t.Run("opens on the threshold failure only", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(2))

		fallback, change := b.RecordFailure()
		assert.False(t, fallback)
		assert.False(t, change.Opened)

		fallback, change = b.RecordFailure()
		assert.True(t, fallback)
		assert.True(t, change.Opened)
		assert.True(t, b.IsOpen())

		fallback, change = b.RecordFailure()
		assert.True(t, fallback)
		assert.False(t, change.Opened, "already open")
	})

	t.Run("a success in between restarts the count", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		assert.False(t, b.IsOpen())
	})
}

func TestBreakerClosing(t *testing.T) {
	b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	primary, change := b.RecordSuccess()
	assert.False(t, primary)
	assert.False(t, change.Closed)

	b.RecordFailure()
	primary, _ = b.RecordSuccess()
	assert.False(t, primary, "the failure reset the success streak")

	primary, change = b.RecordSuccess()
	assert.True(t, primary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReset(t *testing.T) {
	b := New("kafka", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	assert.False(t, b.IsOpen())
}

func TestBreakerAllowsOneTrialPerCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("kafka", WithFailureThreshold(1), WithCooldown(time.Minute))
	b.now = func() time.Time { return now }

	b.RecordFailure()
	assert.False(t, b.Allow(), "freshly opened")

	now = now.Add(time.Minute)
	assert.True(t, b.Allow(), "cooldown elapsed")
	assert.False(t, b.Allow(), "trial already taken")

	_, change := b.RecordSuccess()
	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
}
