// Package circbuf provides fixed capacity FIFO ring buffers.
//
// A ring buffer is created with a [Mode], which decides how a full buffer is told
// apart from an empty one, and a [BufferKind], which decides how it can be shared
// between goroutines:
//
//   - [BufferKindSingle] is not synchronized;
//   - [BufferKindLocked] serializes every operation with a mutex;
//   - [BufferKindSPSC] is lock-free for one producer and one consumer.
//
// Writes come in two flavors: [RingBuffer.Put] always succeeds and discards
// the oldest item when the buffer is full, while [RingBuffer.TryPut] fails with
// [ErrFull]. Put is not safe on a [BufferKindSPSC] buffer while the consumer runs.
//
// Misuse that can only come from a programming error, like a nil storage or
// a buffer too small for its mode, panics.
package circbuf

import "github.com/FerroO2000/circbuf/internal/rb"

// RingBuffer is a generic fixed capacity FIFO ring buffer.
type RingBuffer[T any] = rb.RingBuffer[T]

// Mode is the strategy used to tell a full buffer from an empty one.
type Mode = rb.Mode

// BufferKind is the thread-safety tier of the buffer.
type BufferKind = rb.BufferKind

const (
	// ModeReservedSlot keeps one slot always unused,
	// a buffer of N slots holds at most N-1 items.
	ModeReservedSlot = rb.ModeReservedSlot
	// ModeFullFlag uses every slot and keeps an explicit full flag.
	ModeFullFlag = rb.ModeFullFlag
)

const (
	// BufferKindSingle is not synchronized.
	BufferKindSingle = rb.BufferKindSingle
	// BufferKindLocked guards every operation with a mutex.
	BufferKindLocked = rb.BufferKindLocked
	// BufferKindSPSC is lock-free for a single producer and a single consumer.
	BufferKindSPSC = rb.BufferKindSPSC
)

var (
	// ErrFull is returned by a guarded write on a full buffer.
	ErrFull = rb.ErrFull
	// ErrEmpty is returned when reading or peeking an empty buffer.
	ErrEmpty = rb.ErrEmpty
	// ErrLookAhead is returned when peeking more items than the buffer holds.
	ErrLookAhead = rb.ErrLookAhead
)

// New returns a ring buffer owning a storage of the given number of slots.
func New[T any](slots int, mode Mode, kind BufferKind) *RingBuffer[T] {
	return rb.NewRingBuffer[T](slots, mode, kind)
}

// NewWithStorage returns a ring buffer over the caller's storage.
// The storage must not be used by the caller while the buffer is alive.
func NewWithStorage[T any](storage []T, mode Mode, kind BufferKind) *RingBuffer[T] {
	return rb.NewRingBufferWithStorage(storage, mode, kind)
}
