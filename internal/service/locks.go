package service

import "sync"

// accountLocks serializes balance-mutating operations per account number.
// Mutexes are created lazily and never released; the table grows with the
// set of accounts touched by this process.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *accountLocks) get(accountNumber string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[accountNumber]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountNumber] = m
	}
	return m
}

// lock acquires the mutex for one account and returns its unlock func.
func (l *accountLocks) lock(accountNumber string) func() {
	m := l.get(accountNumber)
	m.Lock()
	return m.Unlock
}

// lockPair acquires both accounts' mutexes in ascending account-number
// order, so two transfers moving funds in opposite directions between the
// same pair cannot deadlock.
func (l *accountLocks) lockPair(a, b string) func() {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	ma, mb := l.get(first), l.get(second)
	ma.Lock()
	mb.Lock()
	return func() {
		mb.Unlock()
		ma.Unlock()
	}
}
