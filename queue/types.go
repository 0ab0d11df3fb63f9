package queue

import (
	"sync"
)

// Constraint ties a queue value to a stable storage key and to the order
// the chain is kept in. FormStoreKey must return the same key for the
// lifetime of a value; Compare follows the usual three-way contract.
type Constraint[KEY comparable, VALUE any] interface {
	FormStoreKey(VALUE) KEY
	Compare(left, right VALUE) int
}

type StoreConstraint[VALUE any] interface {
	Constraint[string, VALUE]
}

type Queue[V comparable] interface {
	Add(value V) int
	Update(value V) error
	Delete(value V) error
	Get(value V) (V, bool)
	Peek() (V, error)
	Pop() (V, error)
	Len() int
}

type BlockQueue[V comparable] interface {
	Queue[V]
	Shutdown()
	IsShutdown() bool
}

type config struct {
	lock sync.Locker
}

type Option func(*config)

func WithLocker(lock sync.Locker) Option {
	return func(cfg *config) {
		cfg.lock = lock
	}
}
