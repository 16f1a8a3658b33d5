package legal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel is the closed low/medium/high scale used for clauses, risk items and the overall rating.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevels lists every valid level in ascending order.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// ParseRiskLevel normalizes and validates a risk level string.
func ParseRiskLevel(raw string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RiskLow):
		return RiskLow, nil
	case string(RiskMedium):
		return RiskMedium, nil
	case string(RiskHigh):
		return RiskHigh, nil
	default:
		return "", fmt.Errorf("invalid risk level %q", raw)
	}
}

// Valid reports whether l is one of the known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

func (l RiskLevel) String() string {
	return string(l)
}

// UnmarshalJSON accepts any casing but rejects values outside the scale.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("risk level: %w", err)
	}
	parsed, err := ParseRiskLevel(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
