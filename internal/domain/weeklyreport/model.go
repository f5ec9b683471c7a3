package weeklyreport

import (
	"encoding/json"
	"fmt"
)

// Report is the weekly report document as published by the risk backend.
// Every nested object may be missing, so each is a pointer; scalar fields use
// presence-aware types. Render code must go through Normalize instead of
// reading these fields directly.
type Report struct {
	Meta           *RawMeta           `json:"meta"`
	FleetOverview  *RawFleetOverview  `json:"fleet_overview"`
	FleetEvolution *RawFleetEvolution `json:"fleet_evolution"`
	VehiclesAtRisk *RawVehiclesAtRisk `json:"vehicles_at_risk"`
	StressAnalysis *RawStressAnalysis `json:"stress_analysis"`
}

type RawMeta struct {
	WeekStart             string `json:"week_start"`
	WeekEnd               string `json:"week_end"`
	TotalVehiclesObserved Number `json:"total_vehicles_observed"`
}

type RawFleetOverview struct {
	RiskDistribution  OrderedCounts         `json:"risk_distribution"`
	RiskPercentages   *RawRiskPercentages   `json:"risk_percentages"`
	FleetHealthStatus string                `json:"fleet_health_status"`
	RiskConcentration *RawRiskConcentration `json:"risk_concentration"`
}

// RawRiskPercentages is shared by the overview percentages and the
// week-over-week deltas.
type RawRiskPercentages struct {
	OK       Number `json:"ok"`
	Warning  Number `json:"warning"`
	Critical Number `json:"critical"`
}

type RawRiskConcentration struct {
	Top3Share Number `json:"top_3_share"`
}

type RawFleetEvolution struct {
	DeltaRiskPercentages *RawRiskPercentages `json:"delta_risk_percentages"`
}

type RawVehiclesAtRisk struct {
	TotalAtRisk  Number       `json:"total_at_risk"`
	DisplayLimit Number       `json:"display_limit"`
	Vehicles     []RawVehicle `json:"vehicles"`
}

// RawVehicle is one ranked row of the at-risk list.
type RawVehicle struct {
	VehicleID       VehicleID      `json:"vehicle_id"`
	Rank            Number         `json:"rank"`
	RiskLevel       string         `json:"risk_level"`
	RiskScore       Number         `json:"risk_score"`
	AnomalyDays7d   Number         `json:"anomaly_days_7d"`
	ConsecutiveDays Number         `json:"consecutive_days"`
	DominantStress  StringList     `json:"dominant_stress"`
	KeyMetrics      *RawKeyMetrics `json:"key_metrics"`
}

type RawKeyMetrics struct {
	AvgSpeed    Number `json:"avg_speed"`
	StopCount   Number `json:"stop_count"`
	IdlingRatio Number `json:"idling_ratio"`
}

type RawStressAnalysis struct {
	StressDistribution OrderedCounts `json:"stress_distribution"`
}

// Decode parses a weekly report document. A JSON null yields a nil report.
// Only structural mismatches (for example an array where an object is
// expected) are reported as errors; missing or oddly typed scalars decode
// as absent.
func Decode(data []byte) (*Report, error) {
	var report *Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode weekly report: %w", err)
	}
	return report, nil
}

// LoadFailureMessage is the user-facing message for any failure to obtain
// the latest report.
const LoadFailureMessage = "Failed to load weekly report"
