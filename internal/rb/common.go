package rb

// advance moves an index one slot forward, wrapping at slots.
// slots is not assumed to be a power of two.
func advance(idx, slots int) int {
	return (idx + 1) % slots
}

// distance returns the number of slots between tail and head
// walking forward from tail.
func distance(head, tail, slots int) int {
	if head >= tail {
		return head - tail
	}

	return slots + head - tail
}

// cursor holds the positions shared by the single-threaded implementations.
type cursor struct {
	// head is the index of the next slot to be written.
	head int
	// tail is the index of the next slot to be read.
	tail int
	// max is the number of raw slots of the storage.
	max int
}

func newCursor(slots int) cursor {
	return cursor{max: slots}
}

func (c *cursor) advanceHead() {
	c.head = advance(c.head, c.max)
}

func (c *cursor) advanceTail() {
	c.tail = advance(c.tail, c.max)
}

func (c *cursor) rewind() {
	c.head = 0
	c.tail = 0
}

// copyFrom copies len(dst) items starting at the tail without moving it.
func copyFrom[T any](storage []T, tail, slots int, dst []T) {
	pos := tail
	for i := range dst {
		dst[i] = storage[pos]
		pos = advance(pos, slots)
	}
}

type tryPutter[T any] interface {
	tryPut(item T) bool
}

type getter[T any] interface {
	get() (T, bool)
}

// putEach writes items one by one until the first rejected one.
func putEach[T any](b tryPutter[T], items []T) int {
	written := 0
	for _, item := range items {
		if !b.tryPut(item) {
			break
		}
		written++
	}
	return written
}

// getEach reads items one by one until dst is filled or b is drained.
func getEach[T any](b getter[T], dst []T) int {
	read := 0
	for read < len(dst) {
		item, ok := b.get()
		if !ok {
			break
		}
		dst[read] = item
		read++
	}
	return read
}
