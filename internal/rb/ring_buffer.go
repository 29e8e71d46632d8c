// Package rb provides a fixed-capacity generic ring buffer
// with selectable full/empty disambiguation and thread-safety tier.
package rb

import (
	"errors"
	"fmt"
)

var (
	// ErrFull is returned when a guarded write finds the buffer full.
	ErrFull = errors.New("ring buffer: buffer is full")
	// ErrEmpty is returned when reading or peeking an empty buffer.
	ErrEmpty = errors.New("ring buffer: buffer is empty")
	// ErrLookAhead is returned when peeking more items than the buffer holds.
	ErrLookAhead = errors.New("ring buffer: look ahead beyond buffer size")
)

// Mode is the strategy used to tell a full buffer from an empty one.
type Mode uint8

const (
	// ModeReservedSlot keeps one storage slot always unused,
	// so a buffer of N slots holds at most N-1 items.
	ModeReservedSlot Mode = iota
	// ModeFullFlag uses every storage slot and keeps an explicit full flag.
	ModeFullFlag
)

func (m Mode) String() string {
	switch m {
	case ModeReservedSlot:
		return "reserved-slot"
	case ModeFullFlag:
		return "full-flag"
	default:
		return "unknown"
	}
}

// MinSlots returns the minimum number of storage slots for the mode.
func (m Mode) MinSlots() int {
	if m == ModeReservedSlot {
		return 2
	}
	return 1
}

// BufferKind is the thread-safety tier of the buffer.
type BufferKind uint8

const (
	// BufferKindSingle is not synchronized,
	// the caller must serialize every access.
	BufferKindSingle BufferKind = iota
	// BufferKindLocked holds a mutex for the whole duration of every operation.
	BufferKindLocked
	// BufferKindSPSC is the lock-free single producer/single consumer implementation.
	// It only supports [ModeReservedSlot], and only TryPut is lock-free:
	// an overwriting Put must not run while the consumer is active.
	BufferKindSPSC
)

func (bk BufferKind) String() string {
	switch bk {
	case BufferKindSingle:
		return "single"
	case BufferKindLocked:
		return "locked"
	case BufferKindSPSC:
		return "SPSC"
	default:
		return "unknown"
	}
}

type buffer[T any] interface {
	// put writes the item evicting the oldest one when full.
	// It returns true if an item was evicted.
	put(item T) bool
	tryPut(item T) bool
	get() (T, bool)
	peek(dst []T) error
	putRange(items []T) int
	getRange(dst []T) int
	reset()
	isEmpty() bool
	isFull() bool
	len() int
	cap() int
}

// RingBuffer is a fixed-capacity FIFO over contiguous storage.
// It never blocks: reads on an empty buffer and guarded writes on
// a full one fail immediately.
type RingBuffer[T any] struct {
	mode Mode
	kind BufferKind

	buf buffer[T]
}

// NewRingBuffer returns a ring buffer owning a storage of slots items.
// For [ModeReservedSlot] the usable capacity is slots-1.
//
// It panics if slots is too small for the mode, or if the mode
// and kind cannot be combined.
func NewRingBuffer[T any](slots int, mode Mode, kind BufferKind) *RingBuffer[T] {
	if slots < 0 {
		panic(fmt.Sprintf("ring buffer: negative slot count %d", slots))
	}

	return NewRingBufferWithStorage(make([]T, slots), mode, kind)
}

// NewRingBufferWithStorage returns a ring buffer over a storage owned by the caller.
// The buffer keeps a reference to storage and writes into it,
// so the caller must not use it while the buffer is in use.
//
// It panics if storage is nil, if it is too small for the mode,
// or if the mode and kind cannot be combined.
func NewRingBufferWithStorage[T any](storage []T, mode Mode, kind BufferKind) *RingBuffer[T] {
	if storage == nil {
		panic("ring buffer: nil storage")
	}

	if mode != ModeReservedSlot && mode != ModeFullFlag {
		panic(fmt.Sprintf("ring buffer: unknown mode %d", mode))
	}

	if len(storage) < mode.MinSlots() {
		panic(fmt.Sprintf("ring buffer: %s mode needs at least %d slots, got %d",
			mode, mode.MinSlots(), len(storage)))
	}

	rb := &RingBuffer[T]{
		mode: mode,
		kind: kind,
	}

	switch kind {
	case BufferKindSingle:
		rb.buf = newCore(storage, mode)

	case BufferKindLocked:
		rb.buf = newLockedBuffer(newCore(storage, mode))

	case BufferKindSPSC:
		if mode != ModeReservedSlot {
			panic("ring buffer: SPSC kind requires the reserved-slot mode")
		}
		rb.buf = newSPSCBuffer(storage)

	default:
		panic(fmt.Sprintf("ring buffer: unknown kind %d", kind))
	}

	return rb
}

func newCore[T any](storage []T, mode Mode) buffer[T] {
	if mode == ModeFullFlag {
		return newFlagBuffer(storage)
	}
	return newSlotBuffer(storage)
}

// Mode returns the full/empty disambiguation strategy.
func (rb *RingBuffer[T]) Mode() Mode {
	return rb.mode
}

// Kind returns the thread-safety tier.
func (rb *RingBuffer[T]) Kind() BufferKind {
	return rb.kind
}

// Put writes the item. If the buffer is full, the oldest item is
// silently discarded to make room: each call evicts at most one item.
//
// With [BufferKindSPSC] it must not run concurrently with the consumer.
func (rb *RingBuffer[T]) Put(item T) {
	rb.buf.put(item)
}

// Overwrite is like [RingBuffer.Put] but reports whether an item was evicted.
func (rb *RingBuffer[T]) Overwrite(item T) (evicted bool) {
	return rb.buf.put(item)
}

// TryPut writes the item only if there is room, otherwise it returns [ErrFull]
// and leaves the buffer untouched.
func (rb *RingBuffer[T]) TryPut(item T) error {
	if !rb.buf.tryPut(item) {
		return ErrFull
	}
	return nil
}

// Get removes and returns the oldest item.
// If the buffer is empty it returns the zero value and [ErrEmpty].
func (rb *RingBuffer[T]) Get() (T, error) {
	item, ok := rb.buf.get()
	if !ok {
		return item, ErrEmpty
	}
	return item, nil
}

// Peek copies the oldest len(dst) items into dst, oldest first,
// without removing them. It fails with [ErrEmpty] if the buffer is empty
// and with [ErrLookAhead] if len(dst) is greater than [RingBuffer.Size].
// It panics if dst is nil.
func (rb *RingBuffer[T]) Peek(dst []T) error {
	if dst == nil {
		panic("ring buffer: nil peek destination")
	}
	return rb.buf.peek(dst)
}

// PutRange writes as many items as fit, in order, and returns how many were written.
// It never overwrites.
func (rb *RingBuffer[T]) PutRange(items []T) int {
	return rb.buf.putRange(items)
}

// GetRange removes up to len(dst) items into dst, oldest first,
// and returns how many were read.
// It panics if dst is nil.
func (rb *RingBuffer[T]) GetRange(dst []T) int {
	if dst == nil {
		panic("ring buffer: nil get destination")
	}
	return rb.buf.getRange(dst)
}

// Reset empties the buffer. The storage is not cleared.
//
// With [BufferKindSPSC] it must not run concurrently with the producer or the consumer.
func (rb *RingBuffer[T]) Reset() {
	rb.buf.reset()
}

// Empty states whether the buffer holds no items.
func (rb *RingBuffer[T]) Empty() bool {
	return rb.buf.isEmpty()
}

// Full states whether the buffer holds [RingBuffer.Capacity] items.
func (rb *RingBuffer[T]) Full() bool {
	return rb.buf.isFull()
}

// Size returns the number of items in the buffer.
func (rb *RingBuffer[T]) Size() int {
	return rb.buf.len()
}

// Capacity returns the maximum number of items the buffer can hold.
func (rb *RingBuffer[T]) Capacity() int {
	return rb.buf.cap()
}
