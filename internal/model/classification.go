// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Confidence is the categorizer's self-reported certainty tier.
type Confidence int

// Confidence tiers. The zero value is ConfidenceLow so an unset confidence
// never passes the auto-commit gate.
const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

// ParseConfidence converts a tier name into a Confidence.
// Unrecognized values map to ConfidenceLow.
func ParseConfidence(s string) Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ConfidenceHigh
	case "medium":
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

// Accepted reports whether the tier is high enough for automatic acceptance.
func (c Confidence) Accepted() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium:
		return true
	case ConfidenceLow:
		return false
	default:
		return false
	}
}

// MarshalJSON encodes the tier as its lowercase name.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a tier name; unknown names become ConfidenceLow.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("confidence must be a string: %w", err)
	}
	*c = ParseConfidence(s)
	return nil
}

// DraftSource records how a draft obtained its category.
type DraftSource string

// Draft source constants.
const (
	SourceCSV    DraftSource = "CSV"
	SourceAuto   DraftSource = "AUTO"
	SourceManual DraftSource = "MANUAL"
)
