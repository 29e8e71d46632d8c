package rb

// flagBuffer uses every slot of the storage and keeps an explicit
// flag to tell the full state apart from the empty one,
// since both have head == tail.
type flagBuffer[T any] struct {
	cursor

	storage []T
	full    bool
}

func newFlagBuffer[T any](storage []T) *flagBuffer[T] {
	return &flagBuffer[T]{
		cursor:  newCursor(len(storage)),
		storage: storage,
	}
}

func (b *flagBuffer[T]) advanceHead() bool {
	evicted := b.full
	if evicted {
		b.advanceTail()
	}

	b.cursor.advanceHead()
	b.full = b.head == b.tail

	return evicted
}

func (b *flagBuffer[T]) put(item T) bool {
	b.storage[b.head] = item
	return b.advanceHead()
}

func (b *flagBuffer[T]) tryPut(item T) bool {
	if b.full {
		return false
	}

	b.storage[b.head] = item
	b.advanceHead()

	return true
}

func (b *flagBuffer[T]) get() (T, bool) {
	var zero T

	if b.isEmpty() {
		return zero, false
	}

	item := b.storage[b.tail]
	b.advanceTail()

	// Removing an item always frees a slot
	b.full = false

	return item, true
}

func (b *flagBuffer[T]) peek(dst []T) error {
	if b.isEmpty() {
		return ErrEmpty
	}

	if len(dst) > b.len() {
		return ErrLookAhead
	}

	copyFrom(b.storage, b.tail, b.max, dst)

	return nil
}

func (b *flagBuffer[T]) putRange(items []T) int {
	return putEach[T](b, items)
}

func (b *flagBuffer[T]) getRange(dst []T) int {
	return getEach[T](b, dst)
}

func (b *flagBuffer[T]) reset() {
	b.rewind()
	b.full = false
}

func (b *flagBuffer[T]) isEmpty() bool {
	return !b.full && b.head == b.tail
}

func (b *flagBuffer[T]) isFull() bool {
	return b.full
}

func (b *flagBuffer[T]) len() int {
	if b.full {
		return b.max
	}

	return distance(b.head, b.tail, b.max)
}

func (b *flagBuffer[T]) cap() int {
	return b.max
}
