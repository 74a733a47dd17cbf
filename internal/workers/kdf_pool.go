// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/MKhiriev/go-journal-keeper/internal/logger"
)

// ErrPoolStopped is returned for jobs submitted after Stop.
var ErrPoolStopped = errors.New("kdf pool is stopped")

// KDFPool runs CPU-heavy derivations (scrypt, argon2id) on a bounded set of
// goroutines so concurrent sessions cannot starve each other.
//
// A job is never interrupted. When the submitting context ends the caller
// stops waiting, the job still runs to completion, and its result is handed
// to the job's discard function instead of being returned.
type KDFPool struct {
	size   int
	jobs   chan func()
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	logger *logger.Logger
	start  sync.Once
	stop   sync.Once
}

// NewKDFPool creates a pool with size goroutines; size <= 0 means
// runtime.NumCPU(). The pool must be started with Run.
func NewKDFPool(size int, log *logger.Logger) *KDFPool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &KDFPool{
		size:   size,
		jobs:   make(chan func()),
		logger: log,
	}
}

// Size reports the number of goroutines of the pool.
func (p *KDFPool) Size() int { return p.size }

// Run implements [Worker]. It starts the goroutines once.
func (p *KDFPool) Run() {
	p.start.Do(func() {
		for range p.size {
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				for job := range p.jobs {
					job()
				}
			}()
		}
		p.logger.Debug().Int("size", p.size).Msg("kdf pool started")
	})
}

// Stop implements [Worker]. Queued jobs finish before Stop returns.
func (p *KDFPool) Stop() {
	p.stop.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()

		p.wg.Wait()
		p.logger.Debug().Msg("kdf pool stopped")
	})
}

// submit hands job to a pool goroutine, giving up when ctx ends before one
// becomes free.
func (p *KDFPool) submit(ctx context.Context, job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolStopped
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type result[T any] struct {
	val T
	err error
}

// Do runs fn on the pool and returns its result.
//
// If ctx ends while fn runs, Do returns ctx.Err() at once; fn keeps running
// and its successful result is passed to discard (when non-nil) so key
// material can be wiped. A nil pool runs fn on the calling goroutine.
func Do[T any](ctx context.Context, p *KDFPool, fn func() (T, error), discard func(T)) (T, error) {
	if p == nil {
		return fn()
	}

	done := make(chan result[T], 1)
	var (
		mu        sync.Mutex
		abandoned bool
	)

	job := func() {
		val, err := fn()

		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			if err == nil && discard != nil {
				discard(val)
			}
			return
		}
		done <- result[T]{val: val, err: err}
	}

	var zero T
	if err := p.submit(ctx, job); err != nil {
		return zero, err
	}

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		mu.Lock()
		select {
		case r := <-done:
			// finished while we were giving up
			mu.Unlock()
			return r.val, r.err
		default:
		}
		abandoned = true
		mu.Unlock()
		return zero, ctx.Err()
	}
}
