package weeklyreport

import "strings"

// RiskLevel is the categorical severity assigned to a vehicle.
type RiskLevel string

const (
	RiskLevelOK       RiskLevel = "OK"
	RiskLevelWarning  RiskLevel = "WARNING"
	RiskLevelCritical RiskLevel = "CRITICAL"
	RiskLevelUnknown  RiskLevel = "UNKNOWN"
)

// canonicalLevels is the fixed display order of the distribution chart.
var canonicalLevels = []RiskLevel{RiskLevelOK, RiskLevelWarning, RiskLevelCritical}

// Chart colors per level.
const (
	ColorOK       = "#22c55e"
	ColorWarning  = "#eab308"
	ColorCritical = "#ef4444"
	ColorNeutral  = "#94a3b8"
)

// ParseRiskLevel maps a backend label onto a RiskLevel. Matching ignores case
// and surrounding whitespace; anything else is RiskLevelUnknown.
func ParseRiskLevel(label string) RiskLevel {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(label))) {
	case RiskLevelOK:
		return RiskLevelOK
	case RiskLevelWarning:
		return RiskLevelWarning
	case RiskLevelCritical:
		return RiskLevelCritical
	default:
		return RiskLevelUnknown
	}
}

// Known reports whether the level is one of the canonical values.
func (l RiskLevel) Known() bool {
	return l == RiskLevelOK || l == RiskLevelWarning || l == RiskLevelCritical
}

// Color returns the chart color token for the level.
func (l RiskLevel) Color() string {
	switch l {
	case RiskLevelOK:
		return ColorOK
	case RiskLevelWarning:
		return ColorWarning
	case RiskLevelCritical:
		return ColorCritical
	default:
		return ColorNeutral
	}
}

// Title is the human label used in legends and tiles.
func (l RiskLevel) Title() string {
	switch l {
	case RiskLevelOK:
		return "OK"
	case RiskLevelWarning:
		return "Warning"
	case RiskLevelCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}
