package http

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
	"github.com/yanqian/fleet-risk-dashboard/pkg/util"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templateFuncs = template.FuncMap{
	"count":      formatCount,
	"pct":        formatPercent,
	"delta":      formatDelta,
	"deltaClass": deltaClass,
	"number":     formatNumber,
	"truncate":   truncateRunes,
	"weekRange":  util.FormatWeekRange,
	"since":      formatSince,
	"levelClass": levelClass,
}

// loadTemplates parses the layout and partials once and clones them for every
// page in the route table. Panics on syntax errors so startup fails fast.
func loadTemplates() map[string]*template.Template {
	layout := template.Must(
		template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFiles, "templates/layout.html", "templates/partials.html"),
	)
	result := make(map[string]*template.Template, len(navRoutes))
	for _, route := range navRoutes {
		t := template.Must(layout.Clone())
		template.Must(t.ParseFS(templateFiles, "templates/"+route.Template))
		result[route.Template] = t
	}
	return result
}

func formatCount(v any) string {
	switch n := v.(type) {
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	case float64:
		if n == math.Trunc(n) {
			return humanize.Comma(int64(n))
		}
		return humanize.CommafWithDigits(n, 2)
	default:
		return fmt.Sprint(v)
	}
}

// formatPercent renders a value already on the 0-100 scale: 80 -> "80%".
func formatPercent(v float64) string {
	return humanize.FtoaWithDigits(v, 1) + "%"
}

func formatNumber(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}

// formatDelta renders a signed change in percentage points.
func formatDelta(v float64) string {
	switch {
	case v > 0:
		return "+" + humanize.FtoaWithDigits(v, 1) + " pts"
	case v < 0:
		return "−" + humanize.FtoaWithDigits(-v, 1) + " pts"
	default:
		return "0 pts"
	}
}

func deltaClass(v float64) string {
	switch {
	case v > 0:
		return "up"
	case v < 0:
		return "down"
	default:
		return "flat"
	}
}

// truncateRunes shortens s to at most limit runes, ending with an ellipsis.
// A non-positive limit disables truncation.
func truncateRunes(limit int, s string) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

func formatSince(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func levelClass(l weeklyreport.RiskLevel) string {
	return strings.ToLower(string(l))
}
