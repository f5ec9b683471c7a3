package reportarchive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/fleet-risk-dashboard/pkg/errors"
)

func TestServiceLatestPicksLastName(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"2025-03-03_weekly_report.json": `{"meta":{"week_start":"2025-03-03"}}`,
		"2025-03-10_weekly_report.json": `{"meta":{"week_start":"2025-03-10"}}`,
		"2025-02-24_weekly_report.json": `{"meta":{"week_start":"2025-02-24"}}`,
		"notes.txt":                     "ignored",
	}}
	svc := NewService(source, testLogger())

	doc, err := svc.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-03-10_weekly_report.json", doc.Name)
	require.JSONEq(t, `{"meta":{"week_start":"2025-03-10"}}`, string(doc.Payload))
}

func TestServiceLatestEmpty(t *testing.T) {
	svc := NewService(&stubSource{}, testLogger())

	_, err := svc.Latest(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	require.Equal(t, "No weekly report found", apperrors.MessageOf(err))
}

func TestServiceByDate(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"2025-03-03_weekly_report.json": `{"meta":{}}`,
	}}
	svc := NewService(source, testLogger())

	doc, err := svc.ByDate(context.Background(), "2025-03-03")
	require.NoError(t, err)
	require.Equal(t, "2025-03-03_weekly_report.json", doc.Name)

	_, err = svc.ByDate(context.Background(), "2025-03-17")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	require.Equal(t, "Weekly report not found", apperrors.MessageOf(err))
}

func TestServiceByDateRejectsMalformedDate(t *testing.T) {
	source := &stubSource{}
	svc := NewService(source, testLogger())

	for _, date := range []string{"", "2025-3-3", "../etc/passwd", "2025-02-30"} {
		_, err := svc.ByDate(context.Background(), date)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), date)
	}
	require.Zero(t, source.reads)
}

func TestServiceInvalidPayload(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"2025-03-03_weekly_report.json": `{"meta":`,
	}}
	svc := NewService(source, testLogger())

	_, err := svc.Latest(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidReport))
}

func TestServiceSourceFailure(t *testing.T) {
	source := &stubSource{listErr: errors.New("connection refused")}
	svc := NewService(source, testLogger())

	_, err := svc.List(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeArchiveUnavailable))
	require.ErrorContains(t, err, "connection refused")
}

func TestServiceListSorted(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"2025-03-10_weekly_report.json": `{}`,
		"2025-03-03_weekly_report.json": `{}`,
		"custom.json":                   `{}`,
	}}
	svc := NewService(source, testLogger())

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Name: "2025-03-03_weekly_report.json", Date: "2025-03-03"},
		{Name: "2025-03-10_weekly_report.json", Date: "2025-03-10"},
		{Name: "custom.json"},
	}, entries)
}

func TestDateFromName(t *testing.T) {
	date, ok := DateFromName("2025-03-03_weekly_report.json")
	require.True(t, ok)
	require.Equal(t, "2025-03-03", date)

	_, ok = DateFromName("_weekly_report.json")
	require.False(t, ok)
	_, ok = DateFromName("report.json")
	require.False(t, ok)
}

type stubSource struct {
	docs    map[string]string
	listErr error
	reads   int
}

func (s *stubSource) List(context.Context) ([]Entry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Entry, 0, len(s.docs))
	for name := range s.docs {
		out = append(out, NewEntry(name))
	}
	return out, nil
}

func (s *stubSource) Read(_ context.Context, name string) ([]byte, error) {
	s.reads++
	doc, ok := s.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(doc), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
