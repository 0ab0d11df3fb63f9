package queue

import (
	"fmt"
	"sync"

	cmap "github.com/orcaman/concurrent-map"

	"github.com/LiuYuuChen/containers/priqueue"
)

// entry is the keyed view of a queued value. refs counts how many chain
// nodes currently hold the same value, so a key disappears only when the
// last of them is gone.
type entry[V comparable] struct {
	value V
	refs  int
}

type blockQueue[V comparable] struct {
	cond  *sync.Cond
	chain *priqueue.Queue[V]
	items cmap.ConcurrentMap[*entry[V]]

	constraint StoreConstraint[V]

	stopping bool
	stopped  bool
}

// NewBlockQueue wraps an ordered chain in a condition variable so consumers
// can block on Pop, plus a keyed index so values can be fetched and updated
// by their store key.
func NewBlockQueue[V comparable](constraint StoreConstraint[V], opts ...Option) BlockQueue[V] {
	cfg := &config{
		lock: &sync.RWMutex{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return newBlockQueue[V](constraint, cfg)
}

func newBlockQueue[V comparable](constraint StoreConstraint[V], cfg *config) *blockQueue[V] {
	return &blockQueue[V]{
		cond:       sync.NewCond(cfg.lock),
		chain:      priqueue.New[V](constraint.Compare),
		items:      cmap.New[*entry[V]](),
		constraint: constraint,
	}
}

// Add inserts value into the chain and returns the zero-based position it
// landed at.
func (que *blockQueue[V]) Add(value V) int {
	que.cond.L.Lock()
	index := que.chain.Offer(value)
	que.track(value)
	que.cond.L.Unlock()
	que.cond.Broadcast()
	return index
}

func (que *blockQueue[V]) Update(value V) error {
	que.cond.L.Lock()
	defer que.cond.Broadcast()
	defer que.cond.L.Unlock()
	if que.stopping {
		return fmt.Errorf("can not update an item in a closing queue")
	}

	key := que.constraint.FormStoreKey(value)
	item, ok := que.items.Get(key)
	if !ok {
		return fmt.Errorf("can not update an item not in queue")
	}

	removed := que.chain.Remove(item.value)
	que.untrack(item.value, removed)
	que.chain.Offer(value)
	que.track(value)
	return nil
}

func (que *blockQueue[V]) Delete(value V) error {
	que.cond.L.Lock()
	defer que.cond.L.Unlock()
	removed := que.chain.Remove(value)
	if removed == 0 {
		return fmt.Errorf("object not found")
	}
	que.untrack(value, removed)
	que.cond.Broadcast()
	return nil
}

// Get returns the stored value for value's key, or false when no value with
// that key is queued.
func (que *blockQueue[V]) Get(value V) (V, bool) {
	que.cond.L.Lock()
	defer que.cond.L.Unlock()
	key := que.constraint.FormStoreKey(value)
	item, ok := que.items.Get(key)
	if !ok {
		return *new(V), false
	}
	return item.value, true
}

// Pop removes and returns the head of the chain, blocking while the queue
// is empty. After Shutdown it hands out at most one more value, then only
// errors.
func (que *blockQueue[V]) Pop() (V, error) {
	que.cond.L.Lock()
	defer que.cond.L.Unlock()
	for que.chain.Len() == 0 && !que.stopping {
		que.cond.Wait()
	}

	if que.stopped {
		return *new(V), fmt.Errorf("pop a closed queue")
	}

	if que.stopping {
		que.stopped = true
	}

	value, ok := que.chain.Poll()
	if !ok {
		return *new(V), fmt.Errorf("pop a closed queue")
	}
	que.untrack(value, 1)

	return value, nil
}

func (que *blockQueue[V]) Peek() (V, error) {
	que.cond.L.Lock()
	defer que.cond.L.Unlock()
	value, ok := que.chain.Peek()
	if !ok {
		return *new(V), fmt.Errorf("peek an empty queue")
	}
	return value, nil
}

func (que *blockQueue[V]) Len() int {
	que.cond.L.Lock()
	defer que.cond.L.Unlock()
	return que.chain.Len()
}

func (que *blockQueue[V]) Shutdown() {
	que.cond.L.Lock()
	que.stopping = true
	que.cond.L.Unlock()
	que.cond.Broadcast()
}

func (que *blockQueue[V]) IsShutdown() bool {
	que.cond.L.Lock()
	stopping := que.stopping
	que.cond.L.Unlock()
	return stopping
}

// track and untrack keep the keyed index in step with the chain; both run
// under the queue lock.
func (que *blockQueue[V]) track(value V) {
	key := que.constraint.FormStoreKey(value)
	if item, ok := que.items.Get(key); ok {
		item.value = value
		item.refs++
		return
	}
	que.items.Set(key, &entry[V]{value: value, refs: 1})
}

func (que *blockQueue[V]) untrack(value V, removed int) {
	if removed == 0 {
		return
	}
	key := que.constraint.FormStoreKey(value)
	item, ok := que.items.Get(key)
	if !ok {
		return
	}
	item.refs -= removed
	if item.refs <= 0 {
		que.items.Remove(key)
	}
}
