package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-journal-keeper/internal/logger"
)

func startPool(t *testing.T, size int) *KDFPool {
	t.Helper()
	p := NewKDFPool(size, logger.Nop())
	p.Run()
	t.Cleanup(p.Stop)
	return p
}

func TestKDFPool_DoReturnsResult(t *testing.T) {
	p := startPool(t, 2)

	got, err := Do(context.Background(), p, func() ([]byte, error) {
		return []byte("kek"), nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []byte("kek"), got)
}

func TestKDFPool_DoPropagatesError(t *testing.T) {
	p := startPool(t, 1)
	boom := errors.New("boom")

	_, err := Do(context.Background(), p, func() (int, error) { return 0, boom }, nil)
	assert.ErrorIs(t, err, boom)
}

func TestKDFPool_NilPoolRunsInline(t *testing.T) {
	got, err := Do(context.Background(), nil, func() (string, error) { return "inline", nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, "inline", got)
}

func TestKDFPool_DefaultSize(t *testing.T) {
	p := NewKDFPool(0, nil)
	assert.Positive(t, p.Size())
}

func TestKDFPool_BoundsConcurrency(t *testing.T) {
	const size = 2
	p := startPool(t, size)

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Do(context.Background(), p, func() (struct{}, error) {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return struct{}{}, nil
			}, nil)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(size))
}

func TestKDFPool_CancelledCallerDiscardsResult(t *testing.T) {
	p := startPool(t, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	discarded := make(chan []byte, 1)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, func() ([]byte, error) {
			close(started)
			<-release
			return []byte{1, 2, 3}, nil
		}, func(b []byte) {
			clear(b)
			discarded <- b
		})
		errCh <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// the job is not interrupted; it completes and its output is wiped
	close(release)
	select {
	case b := <-discarded:
		assert.Equal(t, []byte{0, 0, 0}, b)
	case <-time.After(time.Second):
		t.Fatal("result was not discarded")
	}
}

func TestKDFPool_ContextDoneBeforeSubmit(t *testing.T) {
	p := startPool(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// occupy the only goroutine so submission has to wait
	block := make(chan struct{})
	busy := make(chan struct{})
	go func() {
		_, _ = Do(context.Background(), p, func() (int, error) { close(busy); <-block; return 0, nil }, nil)
	}()
	defer close(block)
	<-busy

	var ran atomic.Bool
	_, err := Do(ctx, p, func() (int, error) { ran.Store(true); return 1, nil }, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
}

func TestKDFPool_StoppedRejects(t *testing.T) {
	p := NewKDFPool(1, logger.Nop())
	p.Run()
	p.Stop()
	p.Stop() // idempotent

	_, err := Do(context.Background(), p, func() (int, error) { return 1, nil }, nil)
	assert.ErrorIs(t, err, ErrPoolStopped)
}
