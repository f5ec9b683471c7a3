package dashboard

import (
	"time"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
	"github.com/yanqian/fleet-risk-dashboard/pkg/metrics"
)

// Phase is the UI state driven by the fetcher result. The three phases are
// mutually exclusive.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseReady   Phase = "ready"
)

// State is an immutable snapshot of the dashboard. Report is set only in
// PhaseReady and Error only in PhaseError.
type State struct {
	Phase      Phase                          `json:"phase"`
	Report     *weeklyreport.RenderableReport `json:"report,omitempty"`
	Error      string                         `json:"error,omitempty"`
	Generation uint64                         `json:"generation"`
	StartedAt  time.Time                      `json:"startedAt"`
	UpdatedAt  time.Time                      `json:"updatedAt"`
}

// Loading reports whether a fetch is in flight and nothing is shown yet.
func (s State) Loading() bool { return s.Phase == PhaseLoading }

// Failed reports whether the last fetch failed.
func (s State) Failed() bool { return s.Phase == PhaseError }

// Ready reports whether a normalized report is available.
func (s State) Ready() bool { return s.Phase == PhaseReady && s.Report != nil }

// Status is the JSON shape returned by the dashboard API.
type Status struct {
	State   State                `json:"state"`
	Refresh metrics.RefreshStats `json:"refresh"`
	Source  string               `json:"source"`
}

// Config wires runtime settings for the dashboard domain.
type Config struct {
	SourceURL string
}
