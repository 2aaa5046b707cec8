package app

import "sync"

type resettable interface {
	reset()
}

// lazy computes a value on first use and keeps it, error included, until reset.
type lazy[T any] struct {
	init func() (T, error)
	val  T
	err  error
	mu   sync.Mutex
	done bool
}

func (l *lazy[T]) get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.val, l.err = l.init()
		l.done = true
	}
	return l.val, l.err
}

// peek returns the value without computing it.
func (l *lazy[T]) peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.val, l.done && l.err == nil
}

func (l *lazy[T]) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	l.val, l.err, l.done = zero, nil, false
}
