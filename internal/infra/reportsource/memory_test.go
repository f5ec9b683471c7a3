package reportsource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/reportarchive"
)

func TestMemorySourceCopiesPayloads(t *testing.T) {
	source := NewMemorySource()
	payload := []byte(`{"meta":{}}`)
	source.Put("2025-03-03_weekly_report.json", payload)
	payload[0] = 'x'

	got, err := source.Read(context.Background(), "2025-03-03_weekly_report.json")
	require.NoError(t, err)
	require.Equal(t, `{"meta":{}}`, string(got))

	got[0] = 'y'
	again, err := source.Read(context.Background(), "2025-03-03_weekly_report.json")
	require.NoError(t, err)
	require.Equal(t, `{"meta":{}}`, string(again))
}

func TestMemorySourceListAndMissing(t *testing.T) {
	source := NewMemorySource()
	source.Put("2025-03-10_weekly_report.json", []byte(`{}`))
	source.Put("2025-03-03_weekly_report.json", []byte(`{}`))

	entries, err := source.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-03-03_weekly_report.json", entries[0].Name)
	require.Equal(t, "2025-03-10", entries[1].Date)

	_, err = source.Read(context.Background(), "nope.json")
	require.ErrorIs(t, err, reportarchive.ErrNotFound)
}

func TestMinioHelpers(t *testing.T) {
	require.Equal(t, "s3.example.com", sanitizeEndpoint(" https://s3.example.com/bucket "))
	require.Equal(t, "localhost:9000", sanitizeEndpoint("http://localhost:9000"))
	require.Equal(t, "", sanitizeEndpoint(""))

	require.Equal(t, "", normalizePrefix(""))
	require.Equal(t, "reports/weekly/", normalizePrefix("/reports/weekly/"))
}
