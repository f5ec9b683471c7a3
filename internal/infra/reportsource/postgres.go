package reportsource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/reportarchive"
	"github.com/yanqian/fleet-risk-dashboard/pkg/util"
)

const reportsSchema = `
CREATE TABLE IF NOT EXISTS weekly_reports (
	report_date DATE PRIMARY KEY,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresSource reads report documents from the weekly_reports table.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource constructs the source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// EnsureSchema creates the reports table when missing.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, reportsSchema); err != nil {
		return fmt.Errorf("ensure weekly_reports schema: %w", err)
	}
	return nil
}

// List implements reportarchive.Source.
func (s *PostgresSource) List(ctx context.Context) ([]reportarchive.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT report_date
		FROM weekly_reports
		ORDER BY report_date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []reportarchive.Entry
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		out = append(out, reportarchive.NewEntry(reportarchive.NameForDate(date.Format("2006-01-02"))))
	}
	return out, rows.Err()
}

// Read implements reportarchive.Source.
func (s *PostgresSource) Read(ctx context.Context, name string) ([]byte, error) {
	date, ok := reportarchive.DateFromName(name)
	if !ok || !util.ValidDate(date) {
		return nil, reportarchive.ErrNotFound
	}
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload::text
		FROM weekly_reports
		WHERE report_date = $1::date
	`, date).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reportarchive.ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

var _ reportarchive.Source = (*PostgresSource)(nil)
