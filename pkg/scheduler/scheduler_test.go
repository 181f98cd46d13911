package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLocks is an in-memory LockClient.
type fakeLocks struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeLocks() *fakeLocks { return &fakeLocks{keys: make(map[string]string)} }

func (f *fakeLocks) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLocks) EvalSha(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[keys[0]] == args[0] {
		delete(f.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (f *fakeLocks) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.EvalSha(ctx, "", keys, args...)
}

func (f *fakeLocks) EvalRO(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return f.Eval(ctx, script, keys, args...)
}

func (f *fakeLocks) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return f.EvalSha(ctx, sha1, keys, args...)
}

func (f *fakeLocks) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (f *fakeLocks) ScriptLoad(_ context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func (f *fakeLocks) held(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[lockPrefix+key]
	return ok
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		r := NewRunner(quietLogger(), nil)
		var runs atomic.Int32
		require.NoError(t, r.Add(Job{Name: "sweep", Interval: time.Minute, Run: func(context.Context) error {
			runs.Add(1)
			return nil
		}}))

		require.NoError(t, r.RunOnce(ctx, "sweep"))
		assert.Equal(t, int32(1), runs.Load())
	})

	t.Run("Unknown Job Fails", func(t *testing.T) {
		r := NewRunner(quietLogger(), nil)

		assert.ErrorIs(t, r.RunOnce(ctx, "missing"), ErrUnknownJob)
	})

	t.Run("Job Error Fails", func(t *testing.T) {
		r := NewRunner(quietLogger(), nil)
		boom := errors.New("boom")
		require.NoError(t, r.Add(Job{Name: "sweep", Interval: time.Minute, Run: func(context.Context) error { return boom }}))

		assert.ErrorIs(t, r.RunOnce(ctx, "sweep"), boom)
	})

	t.Run("Overlapping Run Fails", func(t *testing.T) {
		r := NewRunner(quietLogger(), nil)
		started := make(chan struct{})
		finish := make(chan struct{})
		require.NoError(t, r.Add(Job{Name: "sweep", Interval: time.Minute, Run: func(context.Context) error {
			close(started)
			<-finish
			return nil
		}}))

		done := make(chan error, 1)
		go func() { done <- r.RunOnce(ctx, "sweep") }()
		<-started

		assert.ErrorIs(t, r.RunOnce(ctx, "sweep"), ErrAlreadyRunning)
		close(finish)
		assert.NoError(t, <-done)
	})

	t.Run("Duplicate Job Fails", func(t *testing.T) {
		r := NewRunner(quietLogger(), nil)
		job := Job{Name: "sweep", Interval: time.Minute, Run: func(context.Context) error { return nil }}
		require.NoError(t, r.Add(job))

		assert.Error(t, r.Add(job))
		assert.Error(t, r.Add(Job{Name: "bad", Run: job.Run}))
	})
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	locks := newFakeLocks()
	locker := NewRedisLocker(locks)

	t.Run("Success", func(t *testing.T) {
		release, ok, err := locker.TryLock(ctx, "sweep", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, locks.held("sweep"))

		_, ok, err = locker.TryLock(ctx, "sweep", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, release(ctx))
		assert.False(t, locks.held("sweep"))
	})

	t.Run("Locked Job Is Skipped", func(t *testing.T) {
		release, ok, err := locker.TryLock(ctx, "busy", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		defer release(ctx)

		r := NewRunner(quietLogger(), locker)
		ran := false
		require.NoError(t, r.Add(Job{Name: "busy", Interval: time.Minute, Run: func(context.Context) error {
			ran = true
			return nil
		}}))

		assert.ErrorIs(t, r.RunOnce(ctx, "busy"), ErrLocked)
		assert.False(t, ran)
	})

	t.Run("Runner Releases Lock", func(t *testing.T) {
		r := NewRunner(quietLogger(), locker)
		require.NoError(t, r.Add(Job{Name: "free", Interval: time.Minute, Run: func(context.Context) error { return nil }}))

		require.NoError(t, r.RunOnce(ctx, "free"))
		assert.False(t, locks.held("free"))
	})
}

func TestStartRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(quietLogger(), nil)
	var runs atomic.Int32
	require.NoError(t, r.Add(Job{Name: "tick", Interval: time.Millisecond, Jitter: time.Millisecond, Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	r.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	r.Wait()
}
