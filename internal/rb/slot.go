package rb

// slotBuffer keeps one slot of the storage always unused,
// so full and empty can be told apart by comparing head and tail only.
// It holds at most len(storage)-1 items.
type slotBuffer[T any] struct {
	cursor

	storage []T
}

func newSlotBuffer[T any](storage []T) *slotBuffer[T] {
	return &slotBuffer[T]{
		cursor:  newCursor(len(storage)),
		storage: storage,
	}
}

func (b *slotBuffer[T]) put(item T) bool {
	// When full the slot at head is the reserved one,
	// so writing it never clobbers unread data
	b.storage[b.head] = item

	evicted := b.isFull()
	if evicted {
		b.advanceTail()
	}

	b.advanceHead()

	return evicted
}

func (b *slotBuffer[T]) tryPut(item T) bool {
	if b.isFull() {
		return false
	}

	b.storage[b.head] = item
	b.advanceHead()

	return true
}

func (b *slotBuffer[T]) get() (T, bool) {
	var zero T

	if b.isEmpty() {
		return zero, false
	}

	item := b.storage[b.tail]
	b.advanceTail()

	return item, true
}

func (b *slotBuffer[T]) peek(dst []T) error {
	if b.isEmpty() {
		return ErrEmpty
	}

	if len(dst) > b.len() {
		return ErrLookAhead
	}

	copyFrom(b.storage, b.tail, b.max, dst)

	return nil
}

func (b *slotBuffer[T]) putRange(items []T) int {
	n := min(len(items), b.cap()-b.len())
	for _, item := range items[:n] {
		b.storage[b.head] = item
		b.advanceHead()
	}
	return n
}

func (b *slotBuffer[T]) getRange(dst []T) int {
	n := min(len(dst), b.len())
	copyFrom(b.storage, b.tail, b.max, dst[:n])
	b.tail = (b.tail + n) % b.max
	return n
}

func (b *slotBuffer[T]) reset() {
	b.rewind()
}

func (b *slotBuffer[T]) isEmpty() bool {
	return b.head == b.tail
}

func (b *slotBuffer[T]) isFull() bool {
	return advance(b.head, b.max) == b.tail
}

func (b *slotBuffer[T]) len() int {
	return distance(b.head, b.tail, b.max)
}

func (b *slotBuffer[T]) cap() int {
	return b.max - 1
}
