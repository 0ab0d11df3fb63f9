package priqueue

// Comparator reports the relative rank of two elements: negative when left
// ranks before right, zero when they rank the same, positive when left ranks
// after right.
type Comparator[VALUE any] func(left, right VALUE) int

type node[VALUE comparable] struct {
	value VALUE
	next  *node[VALUE]
}

// Queue is a priority queue backed by a singly linked chain that is kept
// sorted on every insert, so the head is always the next element to take.
// Positional access costs O(index) and an insert costs O(n); the sorted
// chain is chosen for its simple, stable ordering guarantees, not as a
// stand-in for a heap. Equal-ranked elements keep their insertion order.
//
// The queue stores values and never touches what they refer to; a value's
// pointee stays owned by the caller for as long as it sits in the chain.
// Not safe for concurrent use without external locking.
type Queue[VALUE comparable] struct {
	head    *node[VALUE]
	size    int
	compare Comparator[VALUE]
}

// New returns an empty queue ordered by compare. The comparator is fixed
// for the queue's lifetime.
func New[VALUE comparable](compare Comparator[VALUE]) *Queue[VALUE] {
	if compare == nil {
		panic("priqueue: nil comparator")
	}
	return &Queue[VALUE]{compare: compare}
}

// Offer inserts value before the first element that ranks strictly after
// it, scanning from the head, and returns the zero-based position the value
// landed at (0 means it became the new head). An equal-ranked element is
// never displaced, so insertion order is preserved within a rank.
func (q *Queue[VALUE]) Offer(value VALUE) int {
	item := &node[VALUE]{value: value}

	var last *node[VALUE]
	now := q.head
	index := 0
	for now != nil && q.compare(now.value, value) <= 0 {
		last = now
		now = last.next
		index++
	}

	item.next = now
	if last == nil {
		q.head = item
	} else {
		last.next = item
	}
	q.size++
	return index
}

// Peek returns the head element without removing it, or the zero value and
// false when the queue is empty.
func (q *Queue[VALUE]) Peek() (VALUE, bool) {
	if q.size == 0 {
		var empty VALUE
		return empty, false
	}
	return q.head.value, true
}

// Poll removes and returns the head element, or the zero value and false
// when the queue is empty.
func (q *Queue[VALUE]) Poll() (VALUE, bool) {
	if q.size == 0 {
		var empty VALUE
		return empty, false
	}

	head := q.head
	q.head = head.next
	head.next = nil
	q.size--
	return head.value, true
}

// At returns the element at the given zero-based position, or the zero
// value and false when the position does not exist. The chain is walked
// from the head, so the cost is O(index).
func (q *Queue[VALUE]) At(index int) (VALUE, bool) {
	if index < 0 || index >= q.size {
		var empty VALUE
		return empty, false
	}

	now := q.head
	for i := 0; i < index; i++ {
		now = now.next
	}
	return now.value, true
}

// Remove unlinks every element equal to value (==, not the comparator) and
// returns how many were removed. The remaining elements keep their relative
// order.
func (q *Queue[VALUE]) Remove(value VALUE) int {
	var last *node[VALUE]
	now := q.head
	removed := 0
	for now != nil {
		if now.value == value {
			if last == nil {
				q.head = now.next
			} else {
				last.next = now.next
			}
			gone := now
			now = now.next
			gone.next = nil
			removed++
		} else {
			last = now
			now = last.next
		}
	}

	q.size -= removed
	return removed
}

// RemoveAt removes and returns the element at the given zero-based
// position, or the zero value and false when the position does not exist,
// in which case nothing changes. Later elements move up one spot.
func (q *Queue[VALUE]) RemoveAt(index int) (VALUE, bool) {
	if index < 0 || index >= q.size {
		var empty VALUE
		return empty, false
	}

	var last *node[VALUE]
	now := q.head
	for i := 0; i < index; i++ {
		last = now
		now = last.next
	}

	if last == nil {
		q.head = now.next
	} else {
		last.next = now.next
	}
	now.next = nil
	q.size--
	return now.value, true
}

// Len returns the number of elements in the queue.
func (q *Queue[VALUE]) Len() int {
	return q.size
}

// Clear drops every element. Each link is severed and each stored value
// zeroed so the nodes do not keep anything reachable; the queue is empty
// and usable afterwards.
func (q *Queue[VALUE]) Clear() {
	now := q.head
	for now != nil {
		next := now.next
		now.next = nil
		var empty VALUE
		now.value = empty
		now = next
	}
	q.head = nil
	q.size = 0
}
