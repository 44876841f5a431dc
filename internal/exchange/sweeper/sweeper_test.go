package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls atomic.Int32
	n     int
	err   error
}

func (f *fakeExpirer) ExpireOverdue(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweep(t *testing.T) {
	t.Run("reports expired sales", func(t *testing.T) {
		f := &fakeExpirer{n: 2}
		s := New(f, WithLogger(quiet()))
		assert.Equal(t, 2, s.Sweep(context.Background()))
	})

	t.Run("partial failure still counts what expired", func(t *testing.T) {
		f := &fakeExpirer{n: 1, err: errors.New("one sale failed")}
		s := New(f, WithLogger(quiet()))
		assert.Equal(t, 1, s.Sweep(context.Background()))
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	f := &fakeExpirer{}
	s := New(f, WithLogger(quiet()), WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return f.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
