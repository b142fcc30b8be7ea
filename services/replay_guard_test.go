package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayGuardRejectsSecondUse(t *testing.T) {
	guard := NewMemoryReplayGuard(5 * time.Minute)
	now := time.Now()
	sig := []byte("signature-bytes")

	ok, err := guard.CheckAndRecord(context.Background(), sig, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.CheckAndRecord(context.Background(), sig, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = guard.CheckAndRecord(context.Background(), []byte("other"), now)
	assert.True(t, ok)
}

func TestReplayGuardSweep(t *testing.T) {
	guard := NewMemoryReplayGuard(5 * time.Minute)
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sig := []byte("sig")

	ok, _ := guard.CheckAndRecord(context.Background(), sig, t0)
	require.True(t, ok)
	guard.CheckAndRecord(context.Background(), []byte("late"), t0.Add(4*time.Minute))

	// inside the window nothing is evicted
	assert.Equal(t, 0, guard.Sweep(t0.Add(4*time.Minute)))
	ok, _ = guard.CheckAndRecord(context.Background(), sig, t0.Add(4*time.Minute))
	assert.False(t, ok)

	// after the window the entry is gone and the signature is accepted again
	assert.Equal(t, 1, guard.Sweep(t0.Add(6*time.Minute)))
	assert.Equal(t, 1, guard.Len())
	ok, _ = guard.CheckAndRecord(context.Background(), sig, t0.Add(6*time.Minute))
	assert.True(t, ok)
}

func TestReplayGuardConcurrentAcceptsOnce(t *testing.T) {
	guard := NewMemoryReplayGuard(5 * time.Minute)
	var accepted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := guard.CheckAndRecord(context.Background(), []byte("same"), time.Now()); ok {
				atomic.AddInt32(&accepted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), accepted)
}
