package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
	apperrors "github.com/yanqian/fleet-risk-dashboard/pkg/errors"
	"github.com/yanqian/fleet-risk-dashboard/pkg/metrics"
	"github.com/yanqian/fleet-risk-dashboard/pkg/util"
)

// ErrClosed is returned by Refresh once the dashboard has been closed.
var ErrClosed = errors.New("dashboard closed")

const refreshKey = "weekly-report:latest"

// Service holds the single "current report" value shown by the dashboard.
type Service interface {
	// Start triggers the initial load in the background.
	Start()
	// Refresh loads the latest report and waits for the outcome. Calls made
	// while a load is in flight join it instead of starting another. If ctx
	// ends first the current state is returned with ctx.Err(); the load keeps
	// running and publishes its result.
	Refresh(ctx context.Context) (State, error)
	State() State
	Status() Status
	// Close cancels any in-flight load. Results arriving afterwards are
	// discarded.
	Close()
}

// ReportFetcher obtains the raw weekly report.
type ReportFetcher interface {
	FetchLatest(ctx context.Context) (*weeklyreport.Report, error)
}

type service struct {
	cfg     Config
	fetcher ReportFetcher
	logger  *slog.Logger
	now     func() time.Time
	stats   *metrics.RefreshRecorder

	group      singleflight.Group
	state      atomic.Pointer[State]
	generation atomic.Uint64

	mu       sync.Mutex
	closed   bool
	lifetime context.Context
	cancel   context.CancelFunc
}

// NewService wires up the dashboard domain.
func NewService(cfg Config, fetcher ReportFetcher, logger *slog.Logger) Service {
	return newService(cfg, fetcher, logger, util.NowUTC)
}

func newService(cfg Config, fetcher ReportFetcher, logger *slog.Logger, now func() time.Time) *service {
	lifetime, cancel := context.WithCancel(context.Background())
	s := &service{
		cfg:      cfg,
		fetcher:  fetcher,
		logger:   logger.With("component", "dashboard.service"),
		now:      now,
		stats:    &metrics.RefreshRecorder{},
		lifetime: lifetime,
		cancel:   cancel,
	}
	s.state.Store(&State{Phase: PhaseLoading})
	return s
}

func (s *service) Start() {
	go func() {
		if _, err := s.Refresh(s.lifetime); err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
			s.logger.Warn("initial weekly report load interrupted", "error", err)
		}
	}()
}

func (s *service) Refresh(ctx context.Context) (State, error) {
	if s.isClosed() {
		return s.State(), ErrClosed
	}

	ch := s.group.DoChan(refreshKey, func() (any, error) {
		return s.load(), nil
	})

	select {
	case res := <-ch:
		state, _ := res.Val.(State)
		if res.Shared {
			s.logger.Debug("refresh joined in-flight load", "generation", state.Generation)
		}
		return state, nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

func (s *service) State() State {
	return *s.state.Load()
}

func (s *service) Status() Status {
	return Status{
		State:   s.State(),
		Refresh: s.stats.Snapshot(),
		Source:  s.cfg.SourceURL,
	}
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.logger.Info("dashboard closed")
}

// load runs one fetch and publishes loading, then ready or error. Only one
// load runs at a time because every caller goes through the singleflight
// group.
func (s *service) load() State {
	gen := s.generation.Add(1)
	started := s.now()
	s.publish(State{Phase: PhaseLoading, Generation: gen, StartedAt: started, UpdatedAt: started})

	raw, err := s.fetcher.FetchLatest(s.lifetime)
	finished := s.now()
	s.stats.Observe(finished.Sub(started), err, finished)

	next := State{Generation: gen, StartedAt: started, UpdatedAt: finished}
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeFetchFailed {
			err = apperrors.Wrap(apperrors.CodeFetchFailed, weeklyreport.LoadFailureMessage, err)
		}
		next.Phase = PhaseError
		next.Error = err.Error()
	} else {
		view := weeklyreport.Normalize(raw)
		next.Phase = PhaseReady
		next.Report = &view
	}

	if !s.publish(next) {
		s.logger.Info("discarding weekly report result after close", "generation", gen)
		return next
	}

	if err != nil {
		s.logger.Error("weekly report load failed", "generation", gen, "duration_ms", finished.Sub(started).Milliseconds(), "error", err)
	} else {
		s.logger.Info("weekly report loaded",
			"generation", gen,
			"week_start", next.Report.Meta.WeekStart,
			"vehicles_observed", next.Report.KPI.VehiclesObserved,
			"vehicles_at_risk", len(next.Report.AtRiskRows),
			"duration_ms", finished.Sub(started).Milliseconds(),
		)
	}
	return next
}

// publish replaces the current state unless the service has been closed.
func (s *service) publish(state State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.state.Store(&state)
	return true
}

func (s *service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
