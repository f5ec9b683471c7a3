package http

import (
	"math"
	"strconv"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
)

// The donut is drawn as stacked stroked circles whose circumference is 100,
// so a slice's dash length equals its percentage.
const (
	donutRadius        = 15.91549430918954
	donutCircumference = 100.0
	donutStartOffset   = 25.0 // twelve o'clock
)

type donutSlice struct {
	Label      string
	Color      string
	Value      float64
	Percent    float64
	DashArray  string
	DashOffset string
}

type donutChart struct {
	Radius float64
	Total  float64
	Slices []donutSlice
}

func newDonutChart(segments []weeklyreport.ChartSegment) donutChart {
	chart := donutChart{Radius: donutRadius, Slices: make([]donutSlice, 0, len(segments))}
	offset := donutStartOffset
	for _, segment := range segments {
		length := segment.Share * donutCircumference
		chart.Total += segment.Value
		chart.Slices = append(chart.Slices, donutSlice{
			Label:      segment.Label,
			Color:      segment.Color,
			Value:      segment.Value,
			Percent:    round1(segment.Share * 100),
			DashArray:  svgNumber(length) + " " + svgNumber(donutCircumference-length),
			DashOffset: svgNumber(offset),
		})
		offset -= length
	}
	return chart
}

type bar struct {
	Label string
	Color string
	Value float64
	Width string
}

// newBars scales each segment against the largest one.
func newBars(segments []weeklyreport.ChartSegment) []bar {
	var peak float64
	for _, segment := range segments {
		peak = math.Max(peak, segment.Value)
	}
	bars := make([]bar, 0, len(segments))
	for _, segment := range segments {
		width := 0.0
		if peak > 0 {
			width = segment.Value / peak * 100
		}
		bars = append(bars, bar{Label: segment.Label, Color: segment.Color, Value: segment.Value, Width: svgNumber(width) + "%"})
	}
	return bars
}

func svgNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
