package tx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "landregistry/pkg/domain-errors"
)

func TestMemoryRunner(t *testing.T) {
	t.Run("nested calls reuse the outer unit of work", func(t *testing.T) {
		r := NewMemoryRunner()
		calls := 0
		err := r.RunInTx(context.Background(), func(ctx context.Context) error {
			calls++
			return r.RunInTx(ctx, func(context.Context) error {
				calls++
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("propagates callback error", func(t *testing.T) {
		r := NewMemoryRunner()
		boom := errors.New("boom")
		err := r.RunInTx(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context is rejected", func(t *testing.T) {
		r := NewMemoryRunner()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := r.RunInTx(ctx, func(context.Context) error { return nil })
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("serialises concurrent units of work", func(t *testing.T) {
		r := NewMemoryRunner()
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.RunInTx(context.Background(), func(context.Context) error {
					v := counter
					counter = v + 1
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, counter)
	})
}

func TestFrom_NoTransaction(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
	assert.Equal(t, context.Background(), WithTx(context.Background(), nil))
}
