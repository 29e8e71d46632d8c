package rb

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// spscBuffer is a lock-free single producer/single consumer ring buffer
// with a reserved slot. The head is only stored by the producer
// and the tail only by the consumer.
//
// Go atomics are sequentially consistent, so the producer storing the head
// after writing a slot publishes that slot to the consumer loading the head,
// and the consumer storing the tail after copying a slot out hands it back.
//
// put is NOT safe while a consumer is running: when the buffer is full it
// moves the tail on behalf of the consumer and the two may race on the same
// item. Only tryPut keeps the lock-free guarantee. The same goes for reset,
// which touches both indexes.
type spscBuffer[T any] struct {
	head atomic.Uint64

	_ cpu.CacheLinePad

	tail atomic.Uint64

	_ cpu.CacheLinePad

	slots uint64

	_ cpu.CacheLinePad

	storage []T
}

func newSPSCBuffer[T any](storage []T) *spscBuffer[T] {
	return &spscBuffer[T]{
		slots:   uint64(len(storage)),
		storage: storage,
	}
}

func (b *spscBuffer[T]) next(idx uint64) uint64 {
	return (idx + 1) % b.slots
}

func (b *spscBuffer[T]) put(item T) bool {
	head := b.head.Load()
	tail := b.tail.Load()

	// When full the slot at head is the reserved one
	b.storage[head] = item

	nextHead := b.next(head)

	evicted := nextHead == tail
	if evicted {
		// Racy against a running consumer, see the type doc
		b.tail.Store(b.next(tail))
	}

	b.head.Store(nextHead)

	return evicted
}

func (b *spscBuffer[T]) tryPut(item T) bool {
	// Get head and tail
	head := b.head.Load()
	tail := b.tail.Load()

	nextHead := b.next(head)

	// Check if buffer is full
	if nextHead == tail {
		return false
	}

	// Write the item, then publish it
	b.storage[head] = item
	b.head.Store(nextHead)

	return true
}

func (b *spscBuffer[T]) get() (T, bool) {
	var zero T

	// Get head and tail
	tail := b.tail.Load()
	head := b.head.Load()

	// Check if buffer is empty
	if head == tail {
		return zero, false
	}

	// Read the item, then release the slot
	item := b.storage[tail]
	b.tail.Store(b.next(tail))

	return item, true
}

func (b *spscBuffer[T]) peek(dst []T) error {
	tail := b.tail.Load()
	head := b.head.Load()

	if head == tail {
		return ErrEmpty
	}

	if len(dst) > distance(int(head), int(tail), int(b.slots)) {
		return ErrLookAhead
	}

	copyFrom(b.storage, int(tail), int(b.slots), dst)

	return nil
}

func (b *spscBuffer[T]) putRange(items []T) int {
	return putEach[T](b, items)
}

func (b *spscBuffer[T]) getRange(dst []T) int {
	return getEach[T](b, dst)
}

func (b *spscBuffer[T]) reset() {
	b.head.Store(0)
	b.tail.Store(0)
}

func (b *spscBuffer[T]) isEmpty() bool {
	return b.head.Load() == b.tail.Load()
}

func (b *spscBuffer[T]) isFull() bool {
	tail := b.tail.Load()
	head := b.head.Load()

	return b.next(head) == tail
}

func (b *spscBuffer[T]) len() int {
	tail := b.tail.Load()
	head := b.head.Load()

	return distance(int(head), int(tail), int(b.slots))
}

func (b *spscBuffer[T]) cap() int {
	return int(b.slots) - 1
}
