package instrumentation

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Transport records metrics and a client span for every Calendar API
// request passing through it.
type Transport struct {
	Base    http.RoundTripper
	Metrics *Metrics
}

// NewTransport wraps base. A nil base uses http.DefaultTransport.
func NewTransport(base http.RoundTripper, metrics *Metrics) *Transport {
	return &Transport{Base: base, Metrics: metrics}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resource, operation := ClassifyCalendarRequest(req.Method, req.URL.EscapedPath())
	ctx, span := StartCalendarSpan(req.Context(), resource, operation,
		semconv.HTTPRequestMethodKey.String(req.Method),
	)
	defer span.End()

	start := time.Now()
	resp, err := base.RoundTrip(req.WithContext(ctx))
	duration := time.Since(start)

	if err != nil {
		SetSpanError(span, err)
		t.Metrics.RecordCalendarRequest(ctx, resource, operation, 0, duration)
		return nil, err
	}

	span.SetAttributes(semconv.HTTPResponseStatusCodeKey.Int(resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.Bool(SpanAttrFailed, true))
	} else {
		SetSpanSuccess(span)
	}
	t.Metrics.RecordCalendarRequest(ctx, resource, operation, resp.StatusCode, duration)
	return resp, nil
}
