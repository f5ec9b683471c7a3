package http

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
)

func TestTemplatesLoadForEveryRoute(t *testing.T) {
	templates := loadTemplates()
	for _, route := range navRoutes {
		tmpl, ok := templates[route.Template]
		require.True(t, ok, route.Template)
		require.NotNil(t, tmpl.Lookup("content"), route.Template)
		require.NotNil(t, tmpl.Lookup("layout.html"), route.Template)
	}
}

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "harsh_braking, idling", truncateRunes(0, "harsh_braking, idling"))
	require.Equal(t, "harsh_braking, idling", truncateRunes(21, "harsh_braking, idling"))
	require.Equal(t, "harsh_braking,…", truncateRunes(16, "harsh_braking, idling"))
	require.Equal(t, "überl…", truncateRunes(6, "überladung"))
}

func TestFailureCause(t *testing.T) {
	require.Equal(t, "report request error: status=502", failureCause("Failed to load weekly report: report request error: status=502"))
	require.Equal(t, "", failureCause("Failed to load weekly report"))
	require.Equal(t, "", failureCause(""))

	long := failureCause("Failed to load weekly report: " + strings.Repeat("x", 500))
	require.Len(t, []rune(long), failureCauseLimit)
	require.True(t, strings.HasSuffix(long, "…"))
}

func TestFormatters(t *testing.T) {
	require.Equal(t, "80%", formatPercent(80))
	require.Equal(t, "12.5%", formatPercent(12.5))
	require.Equal(t, "0%", formatPercent(0))
	require.Equal(t, "1,200", formatCount(1200))
	require.Equal(t, "7", formatCount(7.0))
	require.Equal(t, "+1.5 pts", formatDelta(1.5))
	require.Equal(t, "−2 pts", formatDelta(-2))
	require.Equal(t, "0 pts", formatDelta(0))
	require.Equal(t, "flat", deltaClass(0))
	require.Equal(t, "never", formatSince(time.Time{}))
	require.Equal(t, "critical", levelClass(weeklyreport.RiskLevelCritical))
}

func TestDonutChartGeometry(t *testing.T) {
	chart := newDonutChart([]weeklyreport.ChartSegment{
		{Label: "OK", Value: 30, Share: 0.75, Color: weeklyreport.ColorOK},
		{Label: "Critical", Value: 10, Share: 0.25, Color: weeklyreport.ColorCritical},
	})
	require.Equal(t, float64(40), chart.Total)
	require.Len(t, chart.Slices, 2)
	require.Equal(t, "75 25", chart.Slices[0].DashArray)
	require.Equal(t, "25", chart.Slices[0].DashOffset)
	require.Equal(t, "25 75", chart.Slices[1].DashArray)
	require.Equal(t, "-50", chart.Slices[1].DashOffset)
	require.Equal(t, 25.0, chart.Slices[1].Percent)

	require.Empty(t, newDonutChart(nil).Slices)
}

func TestBarsScaleToPeak(t *testing.T) {
	bars := newBars([]weeklyreport.ChartSegment{
		{Label: "harsh_braking", Value: 8},
		{Label: "idling", Value: 2},
	})
	require.Equal(t, "100%", bars[0].Width)
	require.Equal(t, "25%", bars[1].Width)
}

func TestResolvePage(t *testing.T) {
	require.Equal(t, "/trends", resolvePage("/trends").Path)
	require.Equal(t, "/vehicles", resolvePage("", "http://localhost:8080/vehicles?gen=3").Path)
	require.Equal(t, "/", resolvePage("/admin", "https://evil.example.com/").Path)
	require.Equal(t, "/weekly?gen=7", pageURL(navRoutes[3], 7))
}
