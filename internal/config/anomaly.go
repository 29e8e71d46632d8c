package config

import (
	"iter"
	"slices"
)

type anomaly struct {
	field    string
	reason   string
	actual   any
	fallback any
}

// AnomalyCollector collects the anomalies found while validating a configuration.
type AnomalyCollector struct {
	anomalies []*anomaly
}

func newAnomalyCollector() *AnomalyCollector {
	return &AnomalyCollector{
		anomalies: []*anomaly{},
	}
}

// Add records that field has been replaced by fallback for the given reason.
func (ac *AnomalyCollector) Add(field, reason string, actual, fallback any) {
	ac.anomalies = append(ac.anomalies, &anomaly{
		field:    field,
		reason:   reason,
		actual:   actual,
		fallback: fallback,
	})
}

// Len returns the number of collected anomalies.
func (ac *AnomalyCollector) Len() int {
	return len(ac.anomalies)
}

func (ac *AnomalyCollector) iter() iter.Seq[*anomaly] {
	return slices.Values(ac.anomalies)
}

func (ac *AnomalyCollector) reset() {
	ac.anomalies = ac.anomalies[:0]
}
