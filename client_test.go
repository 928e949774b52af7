package callbridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/callbridge-go/bridge"
	"github.com/glimte/callbridge-go/contracts"
)

// runScenario submits the commands one at a time over a fresh consumer
// run of b and returns the last Submit result, the runner's final value
// and every value the consumer observed.
func runScenario(t *testing.T, b *bridge.Bridge, cmds ...contracts.Command) (any, any, []any) {
	t.Helper()
	ctx := context.Background()

	var mu sync.Mutex
	var seen []any

	runner := NewRunner(b)
	runner.Go(ctx, func(v any) error {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
		return nil
	})

	var last any
	for _, cmd := range cmds {
		r, err := b.Submit(ctx, cmd)
		require.NoError(t, err)
		last = r
	}

	require.NoError(t, b.StopDelegation(ctx, false))
	final, err := runner.Wait()
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	return last, final, seen
}

func TestRunner(t *testing.T) {
	t.Run("command yielding nothing returns its result", func(t *testing.T) {
		b := New()

		last, final, seen := runScenario(t, b, contracts.Values("Result"))

		assert.Equal(t, "Result", last)
		assert.Equal(t, "Result", final)
		assert.Empty(t, seen)
	})

	t.Run("yielded values appear in order before the result", func(t *testing.T) {
		b := New()

		last, final, seen := runScenario(t, b,
			contracts.Values("Result 2", "Test", "Test1"))

		assert.Equal(t, "Result 2", last)
		assert.Equal(t, "Result 2", final)
		assert.Equal(t, []any{"Test", "Test1"}, seen)
	})

	t.Run("two commands produce the last result", func(t *testing.T) {
		b := New()

		last, final, seen := runScenario(t, b,
			contracts.Values("Result 1", "Test"),
			contracts.Values("Result 2", "Test2"))

		assert.Equal(t, "Result 2", last)
		assert.Equal(t, "Result 2", final)
		assert.Equal(t, []any{"Test", "Test2"}, seen)
	})

	t.Run("a fresh run after a stop starts clean", func(t *testing.T) {
		b := New()
		cmd1 := contracts.Values("Result 1", "Test")
		cmd2 := contracts.Values("Result 2", "Test2")

		_, final, _ := runScenario(t, b, cmd2)
		assert.Equal(t, "Result 2", final)

		_, final, _ = runScenario(t, b, cmd1)
		assert.Equal(t, "Result 1", final)
	})

	t.Run("many runs with many commands", func(t *testing.T) {
		b := New()
		cmd1 := contracts.Values("Result 1", "Test")
		cmd2 := contracts.Values("Result 2", "Test2")
		cmd3 := contracts.Values("Result 3", "Test3")

		_, final, _ := runScenario(t, b, cmd2, cmd3, cmd1)
		assert.Equal(t, "Result 1", final)

		_, final, _ = runScenario(t, b, cmd1, cmd3, cmd2)
		assert.Equal(t, "Result 2", final)

		_, final, _ = runScenario(t, b, cmd1, cmd2, cmd3)
		assert.Equal(t, "Result 3", final)
	})

	t.Run("command errors reach both sides", func(t *testing.T) {
		ctx := context.Background()
		boom := errors.New("boom")
		b := New()

		runner := NewRunner(b)
		runner.Go(ctx, nil)

		r, err := b.Submit(ctx, contracts.Failing(boom))
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, r)

		_, err = runner.Wait()
		assert.ErrorIs(t, err, boom)

		require.NoError(t, b.StopDelegation(ctx, false))
	})

	t.Run("consumer timeout surfaces through Wait", func(t *testing.T) {
		b := New(bridge.WithNextCommandTimeout(50 * time.Millisecond))

		runner := NewRunner(b)
		runner.Go(context.Background(), nil)

		final, err := runner.Wait()
		assert.ErrorIs(t, err, bridge.ErrNextCommandTimeout)
		assert.Nil(t, final)
	})
}
