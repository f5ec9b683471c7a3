package weeklyreport

import (
	"math"
	"strings"
)

// StressSeparator joins dominant stress factors for display.
const StressSeparator = ", "

// Normalize derives the render-safe view of raw. It is total: a nil report,
// or one with any subset of fields missing, yields defaults (0, "" and empty
// slices). raw is never modified and the result shares no memory with it.
func Normalize(raw *Report) RenderableReport {
	if raw == nil {
		raw = &Report{}
	}

	out := RenderableReport{
		ChartSegments: []ChartSegment{},
		AtRiskRows:    []VehicleRow{},
		StressFactors: []ChartSegment{},
	}

	if meta := raw.Meta; meta != nil {
		out.Meta = WeekMeta{
			WeekStart:             strings.TrimSpace(meta.WeekStart),
			WeekEnd:               strings.TrimSpace(meta.WeekEnd),
			TotalVehiclesObserved: count(meta.TotalVehiclesObserved),
		}
	}
	out.KPI.VehiclesObserved = out.Meta.TotalVehiclesObserved

	if overview := raw.FleetOverview; overview != nil {
		if pct := overview.RiskPercentages; pct != nil {
			out.KPI.OKPct = pct.OK.Or(0)
			out.KPI.WarningPct = pct.Warning.Or(0)
			out.KPI.CriticalPct = pct.Critical.Or(0)
		}
		out.ChartSegments = riskSegments(overview.RiskDistribution)
		out.Overview.HealthStatus = strings.TrimSpace(overview.FleetHealthStatus)
		if conc := overview.RiskConcentration; conc != nil {
			out.Overview.Top3Share = conc.Top3Share.Or(0)
			out.Overview.Top3SharePct = asPercent(out.Overview.Top3Share)
		}
	}

	if evo := raw.FleetEvolution; evo != nil && evo.DeltaRiskPercentages != nil {
		delta := evo.DeltaRiskPercentages
		out.Evolution = RiskDeltas{
			OKDelta:       delta.OK.Or(0),
			WarningDelta:  delta.Warning.Or(0),
			CriticalDelta: delta.Critical.Or(0),
		}
	}

	if atRisk := raw.VehiclesAtRisk; atRisk != nil {
		out.AtRisk = AtRiskSummary{
			TotalAtRisk:  count(atRisk.TotalAtRisk),
			DisplayLimit: count(atRisk.DisplayLimit),
		}
		for _, v := range atRisk.Vehicles {
			out.AtRiskRows = append(out.AtRiskRows, vehicleRow(v))
		}
	}

	if stress := raw.StressAnalysis; stress != nil {
		out.StressFactors = labelSegments(stress.StressDistribution)
	}

	return out
}

// riskSegments builds the distribution chart: canonical levels first in
// OK, WARNING, CRITICAL order, then unrecognised labels in document order.
// Zero, negative and absent counts are dropped.
//
// Labels are matched case-insensitively and keys that differ only in case
// ("ok", "OK") are summed into one segment. Any other label is still drawn,
// in the neutral color, so the chart always accounts for every counted
// vehicle the producer reported.
func riskSegments(dist OrderedCounts) []ChartSegment {
	totals := make(map[RiskLevel]float64, len(canonicalLevels))
	var extra []ChartSegment
	for _, entry := range dist {
		value := entry.Value.Or(0)
		if value <= 0 {
			continue
		}
		level := ParseRiskLevel(entry.Label)
		if level.Known() {
			totals[level] += value
			continue
		}
		extra = append(extra, ChartSegment{
			Label: strings.TrimSpace(entry.Label),
			Level: RiskLevelUnknown,
			Value: value,
			Color: ColorNeutral,
		})
	}

	segments := make([]ChartSegment, 0, len(canonicalLevels)+len(extra))
	for _, level := range canonicalLevels {
		if value := totals[level]; value > 0 {
			segments = append(segments, ChartSegment{
				Label: level.Title(),
				Level: level,
				Value: value,
				Color: level.Color(),
			})
		}
	}
	segments = append(segments, extra...)
	return withShares(segments)
}

// labelSegments keeps document order and uses the neutral color.
func labelSegments(dist OrderedCounts) []ChartSegment {
	segments := make([]ChartSegment, 0, len(dist))
	for _, entry := range dist {
		value := entry.Value.Or(0)
		if value <= 0 {
			continue
		}
		segments = append(segments, ChartSegment{
			Label: strings.TrimSpace(entry.Label),
			Level: RiskLevelUnknown,
			Value: value,
			Color: ColorNeutral,
		})
	}
	return withShares(segments)
}

func withShares(segments []ChartSegment) []ChartSegment {
	var total float64
	for _, s := range segments {
		total += s.Value
	}
	if total <= 0 {
		return segments
	}
	for i := range segments {
		segments[i].Share = segments[i].Value / total
	}
	return segments
}

func vehicleRow(v RawVehicle) VehicleRow {
	stress := make([]string, len(v.DominantStress))
	copy(stress, v.DominantStress)

	row := VehicleRow{
		Rank:            count(v.Rank),
		VehicleID:       string(v.VehicleID),
		RiskLevel:       ParseRiskLevel(v.RiskLevel),
		RiskScore:       v.RiskScore.Or(0),
		AnomalyDays7d:   count(v.AnomalyDays7d),
		ConsecutiveDays: count(v.ConsecutiveDays),
		DominantStress:  stress,
		StressLabel:     strings.Join(stress, StressSeparator),
	}
	if m := v.KeyMetrics; m != nil {
		row.KeyMetrics = KeyMetrics{
			AvgSpeed:    m.AvgSpeed.Or(0),
			StopCount:   count(m.StopCount),
			IdlingRatio: m.IdlingRatio.Or(0),
		}
	}
	return row
}

// count converts a counter field to a non-negative integer.
func count(n Number) int {
	v := n.Or(0)
	if v <= 0 {
		return 0
	}
	return int(math.Round(v))
}

// asPercent treats values in [0,1] as fractions and anything larger as an
// already scaled percentage.
func asPercent(v float64) float64 {
	if v > 0 && v <= 1 {
		return v * 100
	}
	return v
}
