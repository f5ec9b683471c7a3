package reportarchive

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Source when the named report does not exist.
var ErrNotFound = errors.New("report not found")

// Source is the read-only storage contract for published weekly reports.
// Names follow the "{YYYY-MM-DD}_weekly_report.json" convention; List returns
// them in ascending order.
type Source interface {
	List(ctx context.Context) ([]Entry, error)
	Read(ctx context.Context, name string) ([]byte, error)
}
