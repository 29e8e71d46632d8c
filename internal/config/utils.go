package config

import (
	"cmp"
	"fmt"
	"slices"
)

// CheckNotLower checks that the value is not lower than lowest.
// If it is, an anomaly is added and the value is set to the fallback.
func CheckNotLower[T cmp.Ordered](ac *AnomalyCollector, field string, actual *T, lowest, fallback T) {
	if val := *actual; val < lowest {
		ac.Add(field, fmt.Sprintf("cannot be lower than %v", lowest), val, fallback)
		*actual = fallback
	}
}

// CheckNotGreater checks that the value is not greater than highest.
// If it is, an anomaly is added and the value is set to highest.
func CheckNotGreater[T cmp.Ordered](ac *AnomalyCollector, field string, actual *T, highest T) {
	if val := *actual; val > highest {
		ac.Add(field, fmt.Sprintf("cannot be greater than %v", highest), val, highest)
		*actual = highest
	}
}

// CheckOneOf checks that the value is one of the allowed ones.
// If it is not, an anomaly is added and the value is set to the fallback.
func CheckOneOf[T comparable](ac *AnomalyCollector, field string, actual *T, fallback T, allowed ...T) {
	if val := *actual; !slices.Contains(allowed, val) {
		ac.Add(field, "unknown value", val, fallback)
		*actual = fallback
	}
}

// CheckNot replaces the value with the fallback when it is equal to forbidden.
// The reason explains why the value cannot be used.
func CheckNot[T comparable](ac *AnomalyCollector, field, reason string, actual *T, forbidden, fallback T) {
	if val := *actual; val == forbidden {
		ac.Add(field, reason, val, fallback)
		*actual = fallback
	}
}
