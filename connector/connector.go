// Package connector provides blocking connectors built on top of the ring buffers,
// used to hand items from producer goroutines to consumer goroutines.
package connector

import "context"

// Connector is the interface of a connector between goroutines.
type Connector[T any] interface {
	// Write writes an item into the connector.
	Write(item T) error
	// Read reads an item from the connector, waiting for one if needed.
	Read(ctx context.Context) (T, error)
	// Close closes (forever) the connector.
	Close()
}
