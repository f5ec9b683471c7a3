package reportapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
	apperrors "github.com/yanqian/fleet-risk-dashboard/pkg/errors"
)

func TestFetchLatestSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/weekly-report/latest", r.URL.Path)
		require.Contains(t, r.Header.Get("Cache-Control"), "no-cache")
		require.Equal(t, "no-cache", r.Header.Get("Pragma"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meta":{"week_start":"2025-03-03","total_vehicles_observed":120}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)
	report, err := client.FetchLatest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Meta)
	require.Equal(t, "2025-03-03", report.Meta.WeekStart)
	require.Equal(t, 120.0, report.Meta.TotalVehiclesObserved.Value)
}

func TestFetchLatestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeFetchFailed))
	require.Equal(t, weeklyreport.LoadFailureMessage, apperrors.MessageOf(err))
	require.Contains(t, err.Error(), "status=500")
	require.NotContains(t, err.Error(), "boom")
}

func TestFetchLatestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeFetchFailed))
	require.Contains(t, err.Error(), "status=404")
}

func TestFetchLatestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeFetchFailed))
	require.Contains(t, err.Error(), "decode weekly report")
}

func TestFetchLatestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).FetchLatest(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeFetchFailed))
	require.Contains(t, err.Error(), "report request failed")
}

func TestFetchLatestHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(srv.URL, 0).FetchLatest(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("  ", 0)
	require.Equal(t, "http://127.0.0.1:8080/api/weekly-report/latest", client.Endpoint())
}
