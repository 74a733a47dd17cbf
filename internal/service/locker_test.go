package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLocker_SerialisesSameUser(t *testing.T) {
	l := NewUserLocker()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(1)
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, l.locks, "released locks are dropped")
}

func TestUserLocker_DifferentUsersDoNotBlock(t *testing.T) {
	l := NewUserLocker()

	unlock := l.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		l.Lock(2)()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock of user 2 waited for user 1")
	}
}

func TestUserLocker_UnlockIsIdempotent(t *testing.T) {
	l := NewUserLocker()

	unlock := l.Lock(1)
	unlock()
	unlock()

	// a second holder would deadlock if the extra unlock corrupted state
	l.Lock(1)()
	assert.Empty(t, l.locks)
}
