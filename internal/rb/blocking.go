package rb

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

var maxSpins = runtime.NumCPU() * 32

// ErrClosed is returned when the buffer is closed.
var ErrClosed = errors.New("ring buffer: buffer is closed")

// Policy is the behavior of a blocking write on a full buffer.
type Policy uint8

const (
	// PolicyBlock waits until there is room for the item.
	PolicyBlock Policy = iota
	// PolicyOverwrite discards the oldest item, it never waits.
	PolicyOverwrite
	// PolicyReject fails with [ErrFull], it never waits.
	PolicyReject
)

func (p Policy) String() string {
	switch p {
	case PolicyBlock:
		return "block"
	case PolicyOverwrite:
		return "overwrite"
	case PolicyReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of the counters of a [BlockingRingBuffer].
type Stats struct {
	// Written is the number of items written.
	Written int64
	// Overwritten is the number of items discarded by [PolicyOverwrite].
	Overwritten int64
	// Rejected is the number of writes failed by [PolicyReject].
	Rejected int64
	// Read is the number of items read.
	Read int64
}

// BlockingRingBuffer wraps a [RingBuffer] shared between goroutines.
// Reads wait for data, writes behave according to the [Policy].
type BlockingRingBuffer[T any] struct {
	buf    *RingBuffer[T]
	policy Policy

	_ cpu.CacheLinePad

	// isClosed states whether the buffer is closed.
	isClosed atomic.Bool

	_ cpu.CacheLinePad

	// isFull states whether a writer is waiting for room.
	isFull atomic.Bool

	_ cpu.CacheLinePad

	// isEmpty states whether a reader is waiting for data.
	isEmpty atomic.Bool

	_ cpu.CacheLinePad

	// writers is the number of writes in progress.
	// Readers report the close only when it drops to zero.
	writers atomic.Int64

	_ cpu.CacheLinePad

	written     atomic.Int64
	overwritten atomic.Int64
	rejected    atomic.Int64
	read        atomic.Int64

	// notEmpty and notFull are used to signal that the buffer is not empty or full
	notEmpty *sync.Cond
	notFull  *sync.Cond
	mux      *sync.Mutex
}

// NewBlockingRingBuffer returns a blocking wrapper around buf.
//
// It panics if buf is of kind [BufferKindSingle], or if the policy is
// [PolicyOverwrite] and buf is of kind [BufferKindSPSC], since the
// overwriting write would race with the reader.
func NewBlockingRingBuffer[T any](buf *RingBuffer[T], policy Policy) *BlockingRingBuffer[T] {
	switch {
	case buf == nil:
		panic("ring buffer: nil buffer")
	case buf.Kind() == BufferKindSingle:
		panic("ring buffer: blocking buffer cannot wrap a single kind buffer")
	case policy == PolicyOverwrite && buf.Kind() == BufferKindSPSC:
		panic("ring buffer: overwrite policy is not safe with the SPSC kind")
	case policy > PolicyReject:
		panic(fmt.Sprintf("ring buffer: unknown policy %d", policy))
	}

	mux := &sync.Mutex{}

	return &BlockingRingBuffer[T]{
		buf:    buf,
		policy: policy,

		mux:      mux,
		notEmpty: sync.NewCond(mux),
		notFull:  sync.NewCond(mux),
	}
}

// wait must be called with the lock held, it returns with the lock held.
func (b *BlockingRingBuffer[T]) wait(ctx context.Context, cond *sync.Cond) error {
	done := make(chan struct{})

	go func() {
		defer close(done)
		cond.Wait()
		cond.L.Unlock()
	}()

	select {
	case <-done:
		cond.L.Lock()
		return nil

	case <-ctx.Done():
		// Taking the lock guarantees the goroutine is inside Wait
		// or already past it, so the broadcast cannot be lost
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()

		<-done
		cond.L.Lock()
		return ctx.Err()
	}
}

func (b *BlockingRingBuffer[T]) signalNotEmpty() {
	// Check if a reader marked the buffer as empty,
	// if so, wake it up
	if b.isEmpty.CompareAndSwap(true, false) {
		b.mux.Lock()
		b.notEmpty.Broadcast()
		b.mux.Unlock()
	}
}

func (b *BlockingRingBuffer[T]) signalNotFull() {
	// Check if a writer marked the buffer as full,
	// if so, wake it up
	if b.isFull.CompareAndSwap(true, false) {
		b.mux.Lock()
		b.notFull.Broadcast()
		b.mux.Unlock()
	}
}

// Write writes the item according to the policy.
// With [PolicyBlock] it waits until there is room or the buffer is closed.
// An item accepted by a write racing with [BlockingRingBuffer.Close]
// is still delivered to the readers.
func (b *BlockingRingBuffer[T]) Write(item T) error {
	// Announce the write before looking at the close flag,
	// so a reader seeing the close also sees this write
	b.writers.Add(1)
	defer b.writeDone()

	// Check if buffer is closed
	if b.isClosed.Load() {
		return ErrClosed
	}

	switch b.policy {
	case PolicyOverwrite:
		if b.buf.Overwrite(item) {
			b.overwritten.Add(1)
		}

	case PolicyReject:
		if !b.buf.buf.tryPut(item) {
			b.rejected.Add(1)
			return ErrFull
		}

	default:
		if err := b.writeBlocking(item); err != nil {
			return err
		}
	}

	b.written.Add(1)
	b.signalNotEmpty()

	return nil
}

func (b *BlockingRingBuffer[T]) writeDone() {
	// The last write after a close wakes up the readers
	// waiting to report it
	if b.writers.Add(-1) == 0 && b.isClosed.Load() {
		b.mux.Lock()
		b.notEmpty.Broadcast()
		b.mux.Unlock()
	}
}

func (b *BlockingRingBuffer[T]) writeBlocking(item T) error {
	for range maxSpins {
		// Try to push the item
		if b.buf.buf.tryPut(item) {
			return nil
		}

		// The buffer is full, yield to other goroutines
		runtime.Gosched()
	}

	for {
		if b.buf.buf.tryPut(item) {
			return nil
		}

		// Buffer is full, wait for room
		b.mux.Lock()

		// Set buffer as full
		b.isFull.Store(true)

		// Check if buffer is closed
		if b.isClosed.Load() {
			b.mux.Unlock()
			return ErrClosed
		}

		// A reader may have made room before the flag was set
		if b.buf.buf.tryPut(item) {
			b.mux.Unlock()
			return nil
		}

		// Wait for room
		b.notFull.Wait()

		// Someone signaled the buffer as not full
		b.mux.Unlock()
	}
}

// Read removes and returns the oldest item, waiting for one if the buffer is empty.
// Items written before [BlockingRingBuffer.Close] are still returned,
// then it fails with [ErrClosed]. It returns the context error if ctx is done first.
func (b *BlockingRingBuffer[T]) Read(ctx context.Context) (T, error) {
	var item T
	var popOk bool

	for range maxSpins {
		// Try to pop an item
		item, popOk = b.buf.buf.get()
		if popOk {
			goto cleanup
		}

		// The buffer is empty, yield to other goroutines
		runtime.Gosched()
	}

	for {
		item, popOk = b.buf.buf.get()
		if popOk {
			goto cleanup
		}

		// Buffer is empty, wait for data
		b.mux.Lock()

		// Set buffer as empty
		b.isEmpty.Store(true)

		// A writer may have pushed before the flag was set
		item, popOk = b.buf.buf.get()
		if popOk {
			b.mux.Unlock()
			goto cleanup
		}

		// Check if buffer is closed and no write can still land
		if b.isClosed.Load() && b.writers.Load() == 0 {
			b.mux.Unlock()
			return item, ErrClosed
		}

		// Wait for data, return an error if the context is done
		if err := b.wait(ctx, b.notEmpty); err != nil {
			b.mux.Unlock()
			return item, err
		}

		// Someone signaled the buffer as not empty
		b.mux.Unlock()
	}

cleanup:
	b.read.Add(1)
	b.signalNotFull()

	return item, nil
}

// Len returns the number of items in the buffer.
func (b *BlockingRingBuffer[T]) Len() int {
	return b.buf.Size()
}

// Capacity returns the maximum number of items the buffer can hold.
func (b *BlockingRingBuffer[T]) Capacity() int {
	return b.buf.Capacity()
}

// Policy returns the write policy.
func (b *BlockingRingBuffer[T]) Policy() Policy {
	return b.policy
}

// Stats returns a snapshot of the buffer counters.
func (b *BlockingRingBuffer[T]) Stats() Stats {
	return Stats{
		Written:     b.written.Load(),
		Overwritten: b.overwritten.Load(),
		Rejected:    b.rejected.Load(),
		Read:        b.read.Load(),
	}
}

// Close closes the buffer and wakes up every waiting reader and writer.
func (b *BlockingRingBuffer[T]) Close() {
	if !b.isClosed.CompareAndSwap(false, true) {
		return
	}

	b.mux.Lock()
	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
	b.mux.Unlock()
}
