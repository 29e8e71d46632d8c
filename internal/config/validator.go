package config

import (
	"github.com/FerroO2000/circbuf/internal"
)

// Validator validates configurations and logs the anomalies it finds.
type Validator struct {
	tel *internal.Telemetry

	anomalyCollector *AnomalyCollector
}

// NewValidator returns a new validator.
func NewValidator(tel *internal.Telemetry) *Validator {
	return &Validator{
		tel: tel,

		anomalyCollector: newAnomalyCollector(),
	}
}

// Validate validates the given configuration.
// It returns the number of fields that have been replaced.
func (v *Validator) Validate(cfg Config) int {
	v.anomalyCollector.reset()

	cfg.Validate(v.anomalyCollector)

	for anomaly := range v.anomalyCollector.iter() {
		v.handleAnomaly(anomaly)
	}

	return v.anomalyCollector.Len()
}

func (v *Validator) handleAnomaly(an *anomaly) {
	v.tel.LogWarn("config anomaly",
		"field", an.field, "reason", an.reason,
		"actual", an.actual, "fallback", an.fallback)
}
