package weeklyreport

// RenderableReport is the fully defaulted view of a weekly report. Every
// field the presentation layer reads has a concrete value, so templates never
// check for absence.
type RenderableReport struct {
	Meta          WeekMeta       `json:"meta"`
	KPI           KPISummary     `json:"kpiSummary"`
	ChartSegments []ChartSegment `json:"chartSegments"`
	AtRiskRows    []VehicleRow   `json:"atRiskRows"`
	AtRisk        AtRiskSummary  `json:"atRisk"`
	Overview      FleetOverview  `json:"overview"`
	Evolution     RiskDeltas     `json:"evolution"`
	StressFactors []ChartSegment `json:"stressFactors"`
}

type WeekMeta struct {
	WeekStart             string `json:"weekStart"`
	WeekEnd               string `json:"weekEnd"`
	TotalVehiclesObserved int    `json:"totalVehiclesObserved"`
}

// KPISummary holds the four headline tiles.
type KPISummary struct {
	VehiclesObserved int     `json:"vehiclesObserved"`
	OKPct            float64 `json:"okPct"`
	WarningPct       float64 `json:"warningPct"`
	CriticalPct      float64 `json:"criticalPct"`
}

// ChartSegment is one non-empty slice of a proportional chart.
type ChartSegment struct {
	Label string    `json:"label"`
	Level RiskLevel `json:"level"`
	Value float64   `json:"value"`
	Share float64   `json:"share"`
	Color string    `json:"color"`
}

// VehicleRow is one row of the at-risk table, in backend order.
type VehicleRow struct {
	Rank            int        `json:"rank"`
	VehicleID       string     `json:"vehicleId"`
	RiskLevel       RiskLevel  `json:"riskLevel"`
	RiskScore       float64    `json:"riskScore"`
	AnomalyDays7d   int        `json:"anomalyDays7d"`
	ConsecutiveDays int        `json:"consecutiveDays"`
	DominantStress  []string   `json:"dominantStress"`
	StressLabel     string     `json:"stressLabel"`
	KeyMetrics      KeyMetrics `json:"keyMetrics"`
}

type KeyMetrics struct {
	AvgSpeed    float64 `json:"avgSpeed"`
	StopCount   int     `json:"stopCount"`
	IdlingRatio float64 `json:"idlingRatio"`
}

type AtRiskSummary struct {
	TotalAtRisk  int `json:"totalAtRisk"`
	DisplayLimit int `json:"displayLimit"`
}

// FleetOverview carries the free-text health label and risk concentration.
// Top3SharePct is Top3Share expressed on a 0-100 scale.
type FleetOverview struct {
	HealthStatus string  `json:"healthStatus"`
	Top3Share    float64 `json:"top3Share"`
	Top3SharePct float64 `json:"top3SharePct"`
}

// RiskDeltas is the signed week-over-week change of the risk percentages.
type RiskDeltas struct {
	OKDelta       float64 `json:"okDelta"`
	WarningDelta  float64 `json:"warningDelta"`
	CriticalDelta float64 `json:"criticalDelta"`
}

// HasChart reports whether the distribution chart has anything to draw.
func (r RenderableReport) HasChart() bool {
	return len(r.ChartSegments) > 0
}

// HasVehicles reports whether the at-risk table has rows.
func (r RenderableReport) HasVehicles() bool {
	return len(r.AtRiskRows) > 0
}
