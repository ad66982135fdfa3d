// Package http provides the instrumented outbound HTTP client used for API calls.
package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"infomaniak-workers/internal/common/metrics"
)

const tracerName = "infomaniak-workers/http"

// Doer is satisfied by *http.Client and *Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps http.Client with a span and Prometheus metrics per request.
type Client struct {
	httpClient *http.Client
	tracer     trace.Tracer
}

func NewClient(timeout time.Duration) *Client {
	return NewClientWithTransport(timeout, http.DefaultTransport)
}

func NewClientWithTransport(timeout time.Duration, rt http.RoundTripper) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: rt,
		},
		tracer: otel.Tracer(tracerName),
	}
}

// HTTPClient exposes the underlying client, e.g. for oauth2 token refreshes.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx, span := c.tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.Redacted()),
			attribute.String("net.peer.name", req.URL.Hostname()),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.HTTPRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.HTTPRequestsTotal.WithLabelValues(req.Method, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.HTTPRequestsTotal.WithLabelValues(req.Method, statusClass(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, resp.Status)
	}
	return resp, nil
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.Do(req.WithContext(ctx))
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
