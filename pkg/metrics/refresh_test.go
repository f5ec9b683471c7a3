package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefreshRecorderObserve(t *testing.T) {
	var rec RefreshRecorder
	require.True(t, rec.Snapshot().IsZero())

	ok := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	rec.Observe(120*time.Millisecond, nil, ok)
	failed := ok.Add(time.Minute)
	rec.Observe(2*time.Second, errors.New("boom"), failed)

	stats := rec.Snapshot()
	require.False(t, stats.IsZero())
	require.EqualValues(t, 2, stats.Attempts)
	require.EqualValues(t, 1, stats.Failures)
	require.EqualValues(t, 2000, stats.LastDurationMs)
	require.Equal(t, ok, stats.LastSuccessAt)
	require.Equal(t, failed, stats.LastFailureAt)
}
