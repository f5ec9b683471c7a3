package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
	apperrors "github.com/yanqian/fleet-risk-dashboard/pkg/errors"
)

func TestServiceStartsInLoadingPhase(t *testing.T) {
	svc := newTestService(&stubFetcher{})
	state := svc.State()
	require.Equal(t, PhaseLoading, state.Phase)
	require.True(t, state.Loading())
	require.Nil(t, state.Report)
}

func TestServiceRefreshSuccess(t *testing.T) {
	fetcher := &stubFetcher{report: mustReport(t, `{"meta":{"total_vehicles_observed":120},"fleet_overview":{"risk_percentages":{"ok":80,"warning":15}}}`)}
	svc := newTestService(fetcher)

	state, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, state.Ready())
	require.Equal(t, uint64(1), state.Generation)
	require.Equal(t, 120, state.Report.KPI.VehiclesObserved)
	require.Equal(t, 0.0, state.Report.KPI.CriticalPct)
	require.Empty(t, state.Error)
	require.Equal(t, state, svc.State())

	status := svc.Status()
	require.EqualValues(t, 1, status.Refresh.Attempts)
	require.EqualValues(t, 0, status.Refresh.Failures)
	require.Equal(t, "http://backend.test", status.Source)
}

func TestServiceRefreshFailureDropsPreviousReport(t *testing.T) {
	fetcher := &stubFetcher{report: mustReport(t, `{"meta":{"total_vehicles_observed":5}}`)}
	svc := newTestService(fetcher)

	state, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, state.Ready())

	fetcher.setErr(errors.New("status=500"))
	state, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, state.Failed())
	require.Nil(t, state.Report)
	require.Contains(t, state.Error, weeklyreport.LoadFailureMessage)
	require.Contains(t, state.Error, "status=500")
	require.Equal(t, uint64(2), state.Generation)

	status := svc.Status()
	require.EqualValues(t, 2, status.Refresh.Attempts)
	require.EqualValues(t, 1, status.Refresh.Failures)
}

func TestServiceKeepsFetchFailedErrorsAsIs(t *testing.T) {
	fetcher := &stubFetcher{}
	fetcher.setErr(apperrors.Wrap(apperrors.CodeFetchFailed, weeklyreport.LoadFailureMessage, errors.New("timeout")))
	svc := newTestService(fetcher)

	state, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Failed to load weekly report: timeout", state.Error)
}

func TestServiceShowsLoadingWhileFetching(t *testing.T) {
	fetcher := newBlockingFetcher(mustReport(t, `{}`))
	svc := newTestService(fetcher)

	done := make(chan State, 1)
	go func() {
		state, _ := svc.Refresh(context.Background())
		done <- state
	}()

	<-fetcher.started
	state := svc.State()
	require.True(t, state.Loading())
	require.Equal(t, uint64(1), state.Generation)

	close(fetcher.release)
	require.True(t, (<-done).Ready())
}

func TestServiceCoalescesOverlappingRefreshes(t *testing.T) {
	fetcher := newBlockingFetcher(mustReport(t, `{}`))
	svc := newTestService(fetcher)

	first := make(chan State, 1)
	go func() {
		state, _ := svc.Refresh(context.Background())
		first <- state
	}()
	<-fetcher.started

	// A refresh whose caller gives up immediately still joins the in-flight load.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	state, err := svc.Refresh(cancelled)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, state.Loading())

	close(fetcher.release)
	result := <-first
	require.True(t, result.Ready())
	require.EqualValues(t, 1, fetcher.calls.Load())
	require.Equal(t, uint64(1), svc.State().Generation)
}

func TestServiceRefreshOutlivesCallerContext(t *testing.T) {
	fetcher := newBlockingFetcher(mustReport(t, `{"meta":{"total_vehicles_observed":9}}`))
	svc := newTestService(fetcher)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	state, err := svc.Refresh(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, state.Loading())

	close(fetcher.release)
	require.Eventually(t, func() bool { return svc.State().Ready() }, time.Second, 5*time.Millisecond)
	require.Equal(t, 9, svc.State().Report.KPI.VehiclesObserved)
}

func TestServiceCloseDiscardsLateResponse(t *testing.T) {
	fetcher := newBlockingFetcher(mustReport(t, `{}`))
	fetcher.ignoreContext = true
	svc := newTestService(fetcher)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Refresh(context.Background())
	}()
	<-fetcher.started

	svc.Close()
	close(fetcher.release)
	<-done

	require.True(t, svc.State().Loading())
	_, err := svc.Refresh(context.Background())
	require.ErrorIs(t, err, ErrClosed)
	require.EqualValues(t, 1, fetcher.calls.Load())
}

func TestServiceCloseCancelsInFlightFetch(t *testing.T) {
	fetcher := newBlockingFetcher(mustReport(t, `{}`))
	svc := newTestService(fetcher)

	done := make(chan State, 1)
	go func() {
		state, _ := svc.Refresh(context.Background())
		done <- state
	}()
	<-fetcher.started

	svc.Close()
	state := <-done
	require.True(t, state.Failed())
	require.Contains(t, state.Error, context.Canceled.Error())
	require.True(t, svc.State().Loading())
	svc.Close()
}

func TestServiceStartLoadsInBackground(t *testing.T) {
	fetcher := &stubFetcher{report: mustReport(t, `{"meta":{"total_vehicles_observed":3}}`)}
	svc := newTestService(fetcher)
	svc.Start()
	require.Eventually(t, func() bool { return svc.State().Ready() }, time.Second, 5*time.Millisecond)
	svc.Close()
}

func newTestService(fetcher ReportFetcher) *service {
	clock := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(100 * time.Millisecond)
		return clock
	}
	return newService(Config{SourceURL: "http://backend.test"}, fetcher, slog.New(slog.NewTextHandler(io.Discard, nil)), now)
}

func mustReport(t *testing.T, payload string) *weeklyreport.Report {
	t.Helper()
	report, err := weeklyreport.Decode([]byte(payload))
	require.NoError(t, err)
	return report
}

type stubFetcher struct {
	mu     sync.Mutex
	report *weeklyreport.Report
	err    error
}

func (s *stubFetcher) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubFetcher) FetchLatest(ctx context.Context) (*weeklyreport.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

type blockingFetcher struct {
	report        *weeklyreport.Report
	started       chan struct{}
	release       chan struct{}
	ignoreContext bool
	calls         atomic.Int64
	once          sync.Once
}

func newBlockingFetcher(report *weeklyreport.Report) *blockingFetcher {
	return &blockingFetcher{
		report:  report,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingFetcher) FetchLatest(ctx context.Context) (*weeklyreport.Report, error) {
	b.calls.Add(1)
	b.once.Do(func() { close(b.started) })
	if b.ignoreContext {
		<-b.release
		return b.report, nil
	}
	select {
	case <-b.release:
		return b.report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
