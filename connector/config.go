package connector

import (
	"github.com/FerroO2000/circbuf/internal/config"
	"github.com/FerroO2000/circbuf/internal/rb"
)

// Default configuration values for the ring connector.
const (
	DefaultName     = "ring_connector"
	DefaultCapacity = 512
	DefaultMode     = rb.ModeReservedSlot
	DefaultKind     = rb.BufferKindSPSC
	DefaultPolicy   = rb.PolicyBlock
)

var _ config.Config = (*Config)(nil)

// Config is the configuration of a [RingConnector].
type Config struct {
	// Name identifies the connector in logs and metrics.
	Name string

	// Capacity is the number of slots of the ring buffer.
	// With ModeReservedSlot one of them is always kept empty.
	Capacity int

	// Mode is the way the ring buffer tells full from empty.
	Mode Mode

	// Kind is the concurrency tier of the ring buffer.
	// BufferKindSingle is not allowed since the connector is shared.
	Kind BufferKind

	// Policy is the behavior of a write on a full connector.
	Policy Policy
}

// NewConfig returns the default configuration for a ring connector.
func NewConfig() *Config {
	return &Config{
		Name:     DefaultName,
		Capacity: DefaultCapacity,
		Mode:     DefaultMode,
		Kind:     DefaultKind,
		Policy:   DefaultPolicy,
	}
}

// Validate checks the configuration.
func (c *Config) Validate(ac *config.AnomalyCollector) {
	config.CheckNot(ac, "Name", "cannot be empty", &c.Name, "", DefaultName)

	config.CheckOneOf(ac, "Mode", &c.Mode, DefaultMode, rb.ModeReservedSlot, rb.ModeFullFlag)
	config.CheckOneOf(ac, "Kind", &c.Kind, DefaultKind, rb.BufferKindSingle, rb.BufferKindLocked, rb.BufferKindSPSC)
	config.CheckOneOf(ac, "Policy", &c.Policy, DefaultPolicy, rb.PolicyBlock, rb.PolicyOverwrite, rb.PolicyReject)

	config.CheckNot(ac, "Kind", "the connector is shared between goroutines",
		&c.Kind, rb.BufferKindSingle, rb.BufferKindSPSC)

	if c.Kind == rb.BufferKindSPSC {
		if c.Policy == rb.PolicyOverwrite {
			ac.Add("Kind", "overwrite policy races with the reader", c.Kind, rb.BufferKindLocked)
			c.Kind = rb.BufferKindLocked
		} else if c.Mode == rb.ModeFullFlag {
			ac.Add("Kind", "full flag mode is written by both sides", c.Kind, rb.BufferKindLocked)
			c.Kind = rb.BufferKindLocked
		}
	}

	config.CheckNotLower(ac, "Capacity", &c.Capacity, c.Mode.MinSlots(), DefaultCapacity)
}
