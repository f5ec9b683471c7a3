package reportarchive

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"

	apperrors "github.com/yanqian/fleet-risk-dashboard/pkg/errors"
	"github.com/yanqian/fleet-risk-dashboard/pkg/util"
)

// Service serves stored weekly report documents.
type Service interface {
	Latest(ctx context.Context) (Document, error)
	ByDate(ctx context.Context, date string) (Document, error)
	List(ctx context.Context) ([]Entry, error)
}

type service struct {
	source Source
	logger *slog.Logger
}

// NewService wires the archive domain to a storage backend.
func NewService(source Source, logger *slog.Logger) Service {
	return &service{
		source: source,
		logger: logger.With("component", "reportarchive.service"),
	}
}

func (s *service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.source.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeArchiveUnavailable, "failed to list weekly reports", err)
	}
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name, jsonSuffix) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Latest returns the last report in name order.
func (s *service) Latest(ctx context.Context) (Document, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return Document{}, err
	}
	if len(entries) == 0 {
		return Document{}, apperrors.Wrap(apperrors.CodeNotFound, "No weekly report found", nil)
	}
	latest := entries[len(entries)-1]
	return s.read(ctx, latest.Name, "No weekly report found")
}

func (s *service) ByDate(ctx context.Context, date string) (Document, error) {
	date = strings.TrimSpace(date)
	if !util.ValidDate(date) {
		return Document{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be formatted as YYYY-MM-DD", nil)
	}
	return s.read(ctx, NameForDate(date), "Weekly report not found")
}

func (s *service) read(ctx context.Context, name, notFound string) (Document, error) {
	payload, err := s.source.Read(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, apperrors.Wrap(apperrors.CodeNotFound, notFound, nil)
		}
		return Document{}, apperrors.Wrap(apperrors.CodeArchiveUnavailable, "failed to read weekly report", err)
	}
	if !json.Valid(payload) {
		s.logger.Error("stored weekly report is not valid json", "name", name, "bytes", len(payload))
		return Document{}, apperrors.Wrap(apperrors.CodeInvalidReport, "stored weekly report is not valid JSON", nil)
	}
	return Document{Name: name, Payload: json.RawMessage(payload)}, nil
}
