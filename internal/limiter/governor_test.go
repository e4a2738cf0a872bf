package limiter

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-harvester/cfg"
	"github.com/thep200/github-harvester/pkg/log"
)

func newTestGovernor(t *testing.T) *Governor {
	t.Helper()
	loader, err := cfg.NewMockLoader()
	require.NoError(t, err)
	config, err := loader.Load()
	require.NoError(t, err)
	logger, err := log.NewNopLogger()
	require.NoError(t, err)
	return NewGovernor(logger, config)
}

func rateHeader(remaining, limit int, reset time.Time) http.Header {
	h := http.Header{}
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
	return h
}

func TestGovernor_PassesBeforeFirstObserve(t *testing.T) {
	g := newTestGovernor(t)

	// Chưa thấy header nào thì không được chặn request đầu tiên
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.Acquire(ctx))
}

func TestGovernor_ObserveUpdatesState(t *testing.T) {
	g := newTestGovernor(t)

	reset := time.Now().Add(time.Hour)
	g.Observe(rateHeader(42, 5000, reset))

	state := g.State()
	assert.Equal(t, 42, state.Remaining)
	assert.Equal(t, 5000, state.Limit)
	assert.Equal(t, reset.Unix(), state.Reset.Unix())
}

func TestGovernor_ObserveIgnoresUnparseableHeader(t *testing.T) {
	g := newTestGovernor(t)

	g.Observe(rateHeader(10, 5000, time.Now().Add(time.Hour)))

	h := http.Header{}
	h.Set("X-RateLimit-Remaining", "not-a-number")
	g.Observe(h)

	// State cũ phải được giữ nguyên
	assert.Equal(t, 10, g.State().Remaining)
}

func TestGovernor_ObserveClampsNegativeRemaining(t *testing.T) {
	g := newTestGovernor(t)

	g.Observe(rateHeader(-3, 5000, time.Now().Add(time.Hour)))
	assert.Equal(t, 0, g.State().Remaining)
}

func TestGovernor_AcquireDecrementsOptimistically(t *testing.T) {
	g := newTestGovernor(t)

	g.Observe(rateHeader(2, 5000, time.Now().Add(time.Hour)))

	ctx := context.Background()
	require.NoError(t, g.Acquire(ctx))
	assert.Equal(t, 1, g.State().Remaining)
	require.NoError(t, g.Acquire(ctx))
	assert.Equal(t, 0, g.State().Remaining)
}

func TestGovernor_AcquireBlocksUntilReset(t *testing.T) {
	g := newTestGovernor(t)

	reset := time.Now().Add(150 * time.Millisecond)
	g.Observe(rateHeader(0, 5000, reset))

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, g.Acquire(ctx))

	// Không request nào được đi trước thời điểm reset
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestGovernor_AcquirePassesWhenResetInPast(t *testing.T) {
	g := newTestGovernor(t)

	g.Observe(rateHeader(0, 5000, time.Now().Add(-time.Minute)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.Acquire(ctx))
}

func TestGovernor_AcquireHonorsContextCancel(t *testing.T) {
	g := newTestGovernor(t)

	g.Observe(rateHeader(0, 5000, time.Now().Add(time.Hour)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := g.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThrottle_AllowsBurst(t *testing.T) {
	throttle := NewThrottle(10, 2)

	// Burst đầu tiên phải đi ngay
	assert.True(t, throttle.Allow())
	assert.True(t, throttle.Allow())
	assert.False(t, throttle.Allow())
}
