package reportapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/weeklyreport"
	apperrors "github.com/yanqian/fleet-risk-dashboard/pkg/errors"
)

const (
	defaultBaseURL = "http://127.0.0.1:8080"
	latestPath     = "/api/weekly-report/latest"
	maxReportBytes = 16 << 20
	tracerName     = "github.com/yanqian/fleet-risk-dashboard/internal/infra/reportapi"
)

// Client fetches the latest weekly report from the risk backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient builds an API client. A zero timeout leaves requests unbounded
// apart from the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer(tracerName),
	}
}

// Endpoint is the absolute URL of the latest-report resource.
func (c *Client) Endpoint() string {
	return c.baseURL + latestPath
}

// FetchLatest retrieves the current weekly report, always bypassing caches.
// Every failure is an AppError with code fetch_failed.
func (c *Client) FetchLatest(ctx context.Context) (*weeklyreport.Report, error) {
	ctx, span := c.tracer.Start(ctx, "reportapi.FetchLatest",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", c.Endpoint())),
	)
	defer span.End()

	report, status, err := c.fetch(ctx)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.Wrap(apperrors.CodeFetchFailed, weeklyreport.LoadFailureMessage, err)
	}
	return report, nil
}

func (c *Client) fetch(ctx context.Context) (*weeklyreport.Report, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, max-age=0")
	req.Header.Set("Pragma", "no-cache")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		trace.SpanFromContext(ctx).AddEvent("report.error_body",
			trace.WithAttributes(attribute.String("http.response.body", strings.TrimSpace(string(payload)))))
		return nil, resp.StatusCode, fmt.Errorf("report request error: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read report response: %w", err)
	}
	if len(body) > maxReportBytes {
		return nil, resp.StatusCode, fmt.Errorf("report response exceeds %d bytes", maxReportBytes)
	}

	report, err := weeklyreport.Decode(body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return report, resp.StatusCode, nil
}
