package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleeper records requested waits without sleeping.
type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func TestPolicyDelay(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{10, 10 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestPolicyDelayJitterStaysBelowBase(t *testing.T) {
	t.Parallel()
	p := Policy{BaseDelay: time.Second, Multiplier: 2, MaxDelay: 10 * time.Second, Jitter: 0.5}
	for i := 0; i < 100; i++ {
		d := p.Delay(2)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	t.Parallel()
	s := &recordingSleeper{}
	calls := 0

	err := DoWithSleeper(context.Background(), DefaultPolicy(), s.sleep, func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, s.waits)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	s := &recordingSleeper{}
	calls := 0

	err := DoWithSleeper(context.Background(), DefaultPolicy(), s.sleep, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, s.waits)
}

func TestDo_ExhaustsAttemptsWithoutFinalWait(t *testing.T) {
	t.Parallel()
	s := &recordingSleeper{}
	calls := 0
	last := errors.New("attempt 3")

	err := DoWithSleeper(context.Background(), DefaultPolicy(), s.sleep, func(context.Context) error {
		calls++
		if calls == 3 {
			return last
		}
		return errors.New("earlier")
	})

	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, calls)
	assert.Len(t, s.waits, 2, "no wait after the final attempt")
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	t.Parallel()
	s := &recordingSleeper{}
	calls := 0
	cause := errors.New("bad request")

	err := DoWithSleeper(context.Background(), DefaultPolicy(), s.sleep, func(context.Context) error {
		calls++
		return Permanent(cause)
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, s.waits)
}

func TestDo_CancelledContextStopsRetrying(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cause := errors.New("transient")

	err := Do(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return cause
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestDo_AlreadyCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, DefaultPolicy(), func(context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	t.Parallel()
	calls := 0
	_ = Do(context.Background(), Policy{}, func(context.Context) error {
		calls++
		return errors.New("x")
	})
	assert.Equal(t, 1, calls)
}

func TestPermanentNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Permanent(nil))
}
