// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the gcal-mcp server.
//
// # Metrics
//
// HTTP transport:
//   - http_requests_total, http_request_duration_seconds by method, path and status
//   - http_rate_limited_total by path
//
// Google Calendar API (recorded by Transport on every outbound request):
//   - calendar_api_requests_total, calendar_api_request_duration_seconds
//     by resource, operation, status and code
//
// Credentials:
//   - oauth_code_exchange_total by result
//   - forwarded_tokens_total by source and result
//
// MCP tools:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds by tool and status
//
// Labels never carry calendar or event IDs; see ClassifyCalendarRequest.
//
// # Tracing
//
// Tool invocations get a server span named tool.<name>. Each Calendar API
// request gets a client span named calendar.<resource>.<operation>.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - OTEL_SERVICE_NAME (default: gcal-mcp)
//   - METRICS_DETAILED_LABELS, AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	client := &http.Client{
//		Transport: instrumentation.NewTransport(http.DefaultTransport, provider.Metrics()),
//	}
package instrumentation
