package http

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/dashboard"
	"github.com/yanqian/fleet-risk-dashboard/internal/domain/reportarchive"
	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/config"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	dashboard dashboard.Service
	archive   reportarchive.Service
	templates map[string]*template.Template
	settings  viewSettings
	logger    *slog.Logger

	// shownGeneration is the last settled generation served to a pinned
	// request. A pin is honoured once; later visits load again.
	shownGeneration atomic.Uint64
}

type viewSettings struct {
	title       string
	renderWait  time.Duration
	stressLimit int
}

// NewHandler constructs the root HTTP handler. archive may be nil, in which
// case the stored report API is not mounted.
func NewHandler(cfg *config.Config, dash dashboard.Service, archive reportarchive.Service, logger *slog.Logger) *Handler {
	return &Handler{
		dashboard: dash,
		archive:   archive,
		templates: loadTemplates(),
		settings: viewSettings{
			title:       cfg.Dashboard.Title,
			renderWait:  cfg.Dashboard.RenderWait,
			stressLimit: cfg.Dashboard.StressDisplayLimit,
		},
		logger: logger.With("component", "http.handler"),
	}
}

type pageData struct {
	AppTitle       string
	Title          string
	Path           string
	Nav            []navLink
	State          dashboard.State
	Report         weeklyreport.RenderableReport
	Chart          donutChart
	StressBars     []bar
	StressLimit    int
	FailureMessage string
	FailureCause   string
	PollURL        string
	ArchiveEnabled bool
}

func (h *Handler) newPageData(route navRoute, state dashboard.State) pageData {
	data := pageData{
		AppTitle:       h.settings.title,
		Title:          route.Title,
		Path:           route.Path,
		Nav:            navLinks(route.Path),
		State:          state,
		Report:         weeklyreport.Normalize(nil),
		StressLimit:    h.settings.stressLimit,
		FailureMessage: weeklyreport.LoadFailureMessage,
		FailureCause:   failureCause(state.Error),
		PollURL:        pageURL(route, state.Generation),
		ArchiveEnabled: h.archive != nil,
	}
	if state.Ready() {
		data.Report = *state.Report
	}
	data.Chart = newDonutChart(data.Report.ChartSegments)
	data.StressBars = newBars(data.Report.StressFactors)
	return data
}

// page renders one dashboard page. Opening a page loads the latest report.
// A request pinned to the current generation shows that load's result
// without starting another one, but only while it is loading or the first
// time it has settled; a reload of the pinned URL goes back to the bare page.
func (h *Handler) page(route navRoute) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gen, ok := pinnedGeneration(c); ok {
			current := h.dashboard.State()
			if gen == current.Generation {
				if current.Loading() || h.shownGeneration.Swap(gen) != gen {
					h.render(c, route, current)
					return
				}
				if c.GetHeader("HX-Request") != "true" {
					c.Redirect(http.StatusSeeOther, route.Path)
					return
				}
			}
		}
		h.render(c, route, h.refreshForRender(c.Request.Context()))
	}
}

// RefreshPage handles the refresh button. htmx requests get the refreshed
// content block; plain form posts are redirected back to the page.
func (h *Handler) RefreshPage(c *gin.Context) {
	route := resolvePage(c.PostForm("page"), c.GetHeader("Referer"))
	state := h.refreshForRender(c.Request.Context())
	if c.GetHeader("HX-Request") == "true" {
		h.render(c, route, state)
		return
	}
	c.Redirect(http.StatusSeeOther, pageURL(route, state.Generation))
}

// refreshForRender waits at most renderWait for the load. When the wait runs
// out the current state, normally loading, is rendered and the load keeps
// running.
func (h *Handler) refreshForRender(ctx context.Context) dashboard.State {
	ctx, cancel := context.WithTimeout(ctx, h.settings.renderWait)
	defer cancel()
	state, err := h.dashboard.Refresh(ctx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		h.logger.Warn("refresh for render interrupted", "error", err)
	}
	return state
}

func (h *Handler) render(c *gin.Context, route navRoute, state dashboard.State) {
	t, ok := h.templates[route.Template]
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "template_missing", "template not found", nil))
		return
	}
	block := "layout.html"
	if c.GetHeader("HX-Request") == "true" {
		block = "content"
	}
	c.Header("Cache-Control", "no-store")
	c.Render(http.StatusOK, render.HTML{Template: t, Name: block, Data: h.newPageData(route, state)})
}

// DashboardStatus returns the current state without fetching.
func (h *Handler) DashboardStatus(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.dashboard.Status())
}

// RefreshDashboard loads the latest report and returns the resulting state.
func (h *Handler) RefreshDashboard(c *gin.Context) {
	state, err := h.dashboard.Refresh(c.Request.Context())
	if errors.Is(err, dashboard.ErrClosed) {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "dashboard_closed", "dashboard is shutting down", err))
		return
	}
	status := h.dashboard.Status()
	status.State = state
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, status)
}

// LatestReport serves the newest stored report document.
func (h *Handler) LatestReport(c *gin.Context) {
	doc, err := h.archive.Latest(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.writeDocument(c, doc)
}

// ReportByDate serves the report stored for the :date path parameter.
func (h *Handler) ReportByDate(c *gin.Context) {
	doc, err := h.archive.ByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.writeDocument(c, doc)
}

// ListReports lists the stored report documents.
func (h *Handler) ListReports(c *gin.Context) {
	entries, err := h.archive.List(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"reports": entries, "count": len(entries)})
}

func (h *Handler) writeDocument(c *gin.Context, doc reportarchive.Document) {
	c.Header("Cache-Control", "no-store")
	c.Header("X-Report-Name", doc.Name)
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc.Payload)
}

// Health reports liveness along with the dashboard phase.
func (h *Handler) Health(c *gin.Context) {
	status := h.dashboard.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"phase":      status.State.Phase,
		"generation": status.State.Generation,
		"attempted":  !status.Refresh.IsZero(),
	})
}

// failureCause strips the shared failure prefix from a state error so the
// page does not repeat it, and bounds what reaches the page.
func failureCause(stateErr string) string {
	cause := strings.TrimSpace(strings.TrimPrefix(stateErr, weeklyreport.LoadFailureMessage))
	cause = strings.TrimSpace(strings.TrimPrefix(cause, ":"))
	return truncateRunes(failureCauseLimit, cause)
}

const failureCauseLimit = 160

func pinnedGeneration(c *gin.Context) (uint64, bool) {
	raw := c.Query(generationQuery)
	if raw == "" {
		return 0, false
	}
	gen, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return gen, true
}
