package reportsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/reportarchive"
)

func TestFilesystemSourceListsJSONFiles(t *testing.T) {
	source := newFSSource(fstest.MapFS{
		"2025-03-10_weekly_report.json": {Data: []byte(`{"meta":{}}`)},
		"2025-03-03_weekly_report.json": {Data: []byte(`{"meta":{}}`)},
		"README.md":                     {Data: []byte("# reports")},
		"archive/old.json":              {Data: []byte(`{}`)},
	})

	entries, err := source.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []reportarchive.Entry{
		{Name: "2025-03-03_weekly_report.json", Date: "2025-03-03"},
		{Name: "2025-03-10_weekly_report.json", Date: "2025-03-10"},
	}, entries)
}

func TestFilesystemSourceRead(t *testing.T) {
	source := newFSSource(fstest.MapFS{
		"2025-03-03_weekly_report.json": {Data: []byte(`{"meta":{"week_start":"2025-03-03"}}`)},
		"archive/old.json":              {Data: []byte(`{}`)},
	})

	payload, err := source.Read(context.Background(), "2025-03-03_weekly_report.json")
	require.NoError(t, err)
	require.JSONEq(t, `{"meta":{"week_start":"2025-03-03"}}`, string(payload))

	_, err = source.Read(context.Background(), "2025-03-10_weekly_report.json")
	require.ErrorIs(t, err, reportarchive.ErrNotFound)

	_, err = source.Read(context.Background(), "../secrets.json")
	require.ErrorIs(t, err, reportarchive.ErrNotFound)

	_, err = source.Read(context.Background(), "archive/old.json")
	require.ErrorIs(t, err, reportarchive.ErrNotFound)
}

func TestFilesystemSourceOnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2025-03-03_weekly_report.json"), []byte(`{}`), 0o600))
	source := NewFilesystemSource(dir)
	require.Equal(t, dir, source.Dir())

	entries, err := source.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	missing := NewFilesystemSource(filepath.Join(dir, "missing"))
	entries, err = missing.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFilesystemSourceHonorsCancelledContext(t *testing.T) {
	source := newFSSource(fstest.MapFS{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
