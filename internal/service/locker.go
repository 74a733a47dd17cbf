package service

import "sync"

// UserLocker serialises writers per user id. Entry writes and key-epoch
// changes of one user never interleave; different users do not contend.
type UserLocker struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func NewUserLocker() *UserLocker {
	return &UserLocker{locks: make(map[int64]*userLock)}
}

// Lock blocks until the caller owns userID and returns the release func.
func (l *UserLocker) Lock(userID int64) (unlock func()) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ul.Unlock()

			l.mu.Lock()
			ul.refs--
			if ul.refs == 0 {
				delete(l.locks, userID)
			}
			l.mu.Unlock()
		})
	}
}
