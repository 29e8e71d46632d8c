package connector

import (
	"context"

	"github.com/FerroO2000/circbuf/internal"
	"github.com/FerroO2000/circbuf/internal/config"
	"github.com/FerroO2000/circbuf/internal/rb"
)

// Mode is the way the ring buffer tells full from empty.
type Mode = rb.Mode

// BufferKind is the concurrency tier of the ring buffer.
type BufferKind = rb.BufferKind

// Policy is the behavior of a write on a full connector.
type Policy = rb.Policy

// Stats is a snapshot of the connector counters.
type Stats = rb.Stats

const (
	ModeReservedSlot = rb.ModeReservedSlot
	ModeFullFlag     = rb.ModeFullFlag

	BufferKindSingle = rb.BufferKindSingle
	BufferKindLocked = rb.BufferKindLocked
	BufferKindSPSC   = rb.BufferKindSPSC

	PolicyBlock     = rb.PolicyBlock
	PolicyOverwrite = rb.PolicyOverwrite
	PolicyReject    = rb.PolicyReject
)

var (
	// ErrClosed is returned when the connector is closed.
	ErrClosed = rb.ErrClosed
	// ErrFull is returned by a write with PolicyReject on a full connector.
	ErrFull = rb.ErrFull
)

var _ Connector[any] = (*RingConnector[any])(nil)

// RingConnector is a connector backed by a blocking ring buffer.
type RingConnector[T any] struct {
	tel *internal.Telemetry
	buf *rb.BlockingRingBuffer[T]
}

// NewRingConnector returns a new ring connector.
// The configuration is validated first, invalid fields are replaced
// by a fallback and reported through the logs.
func NewRingConnector[T any](cfg *Config) *RingConnector[T] {
	if cfg == nil {
		cfg = NewConfig()
	}

	tel := internal.NewTelemetry("connector", cfg.Name)
	config.NewValidator(tel).Validate(cfg)

	buf := rb.NewRingBuffer[T](cfg.Capacity, cfg.Mode, cfg.Kind)

	rc := &RingConnector[T]{
		tel: tel,
		buf: rb.NewBlockingRingBuffer(buf, cfg.Policy),
	}

	rc.initMetrics()

	tel.LogInfo("connector created",
		"capacity", buf.Capacity(), "mode", cfg.Mode.String(),
		"kind", cfg.Kind.String(), "policy", cfg.Policy.String())

	return rc
}

func (rc *RingConnector[T]) initMetrics() {
	rc.tel.NewCounter("written_items", func() int64 { return rc.buf.Stats().Written })
	rc.tel.NewCounter("overwritten_items", func() int64 { return rc.buf.Stats().Overwritten })
	rc.tel.NewCounter("rejected_writes", func() int64 { return rc.buf.Stats().Rejected })
	rc.tel.NewCounter("read_items", func() int64 { return rc.buf.Stats().Read })
	rc.tel.NewUpDownCounter("buffered_items", func() int64 { return int64(rc.buf.Len()) })
}

// Write writes an item according to the policy of the connector.
// It returns [ErrClosed] if the connector is closed
// and [ErrFull] if the policy rejects the item.
func (rc *RingConnector[T]) Write(item T) error {
	return rc.buf.Write(item)
}

// Read reads an item, waiting until one is available.
// Items written before the close are still returned, then it fails with [ErrClosed].
func (rc *RingConnector[T]) Read(ctx context.Context) (T, error) {
	return rc.buf.Read(ctx)
}

// Len returns the number of buffered items.
func (rc *RingConnector[T]) Len() int {
	return rc.buf.Len()
}

// Capacity returns the maximum number of items the connector can hold.
func (rc *RingConnector[T]) Capacity() int {
	return rc.buf.Capacity()
}

// Stats returns a snapshot of the connector counters.
func (rc *RingConnector[T]) Stats() Stats {
	return rc.buf.Stats()
}

// Close closes the connector and wakes up every waiting goroutine.
func (rc *RingConnector[T]) Close() {
	rc.buf.Close()
	rc.tel.LogInfo("connector closed")
}
