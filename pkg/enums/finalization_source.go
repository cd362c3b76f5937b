package enums

import (
	"fmt"
	"strings"
)

// FinalizationSource names the signal that drove a finalization.
type FinalizationSource string

const (
	FinalizationSourceWebhook  FinalizationSource = "WEBHOOK"
	FinalizationSourceCallback FinalizationSource = "CALLBACK"
	FinalizationSourceSweep    FinalizationSource = "SWEEP"
)

var validFinalizationSources = []FinalizationSource{
	FinalizationSourceWebhook,
	FinalizationSourceCallback,
	FinalizationSourceSweep,
}

// String implements fmt.Stringer.
func (f FinalizationSource) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FinalizationSource.
func (f FinalizationSource) IsValid() bool {
	for _, candidate := range validFinalizationSources {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFinalizationSource converts raw input into a FinalizationSource. Matching is case-insensitive.
func ParseFinalizationSource(value string) (FinalizationSource, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validFinalizationSources {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid finalization source %q", value)
}
