// Package config contains the helpers used to validate
// the configurations across the library.
//
// A configuration never fails validation: every invalid field is
// replaced by a fallback and the replacement is reported as an anomaly.
package config

// Config defines the minimal interface for a configuration
// in order to be validated.
type Config interface {
	// Validate checks the configuration and fixes the invalid fields.
	Validate(ac *AnomalyCollector)
}
