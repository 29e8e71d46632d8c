package rb

import "sync"

// lockedBuffer guards a single-threaded implementation with a mutex
// held for the whole duration of every operation.
// It can be shared by any number of producers and consumers.
type lockedBuffer[T any] struct {
	mux   sync.Mutex
	inner buffer[T]
}

func newLockedBuffer[T any](inner buffer[T]) *lockedBuffer[T] {
	return &lockedBuffer[T]{
		inner: inner,
	}
}

func (b *lockedBuffer[T]) put(item T) bool {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.put(item)
}

func (b *lockedBuffer[T]) tryPut(item T) bool {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.tryPut(item)
}

func (b *lockedBuffer[T]) get() (T, bool) {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.get()
}

func (b *lockedBuffer[T]) peek(dst []T) error {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.peek(dst)
}

func (b *lockedBuffer[T]) putRange(items []T) int {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.putRange(items)
}

func (b *lockedBuffer[T]) getRange(dst []T) int {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.getRange(dst)
}

func (b *lockedBuffer[T]) reset() {
	b.mux.Lock()
	defer b.mux.Unlock()

	b.inner.reset()
}

func (b *lockedBuffer[T]) isEmpty() bool {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.isEmpty()
}

func (b *lockedBuffer[T]) isFull() bool {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.isFull()
}

func (b *lockedBuffer[T]) len() int {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.inner.len()
}

// cap does not need the lock, the capacity never changes.
func (b *lockedBuffer[T]) cap() int {
	return b.inner.cap()
}
