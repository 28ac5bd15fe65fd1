// Package server provides the MCP server context and the HTTP transports
// for the gcal-mcp application.
//
// # Key Components
//
// ServerContext creates Google Calendar clients lazily and caches one per
// account. Credentials are resolved per account in this order:
//   - a bearer token from the GOOGLE_CALENDAR_* environment
//   - a token forwarded to the HTTP transport, kept in an mcp-oauth token store
//   - a token cached on disk by the OAuth code flow
//   - an API key from the environment (public calendars only)
//
// HTTPServer serves the MCP server over streamable HTTP or SSE. Every request
// passes through the middleware chain:
//   - RequestMetricsMiddleware records request counts and latency
//   - RateLimiter limits requests per client address
//   - ForwardedTokenMiddleware stores X-Google-Access-Token or Authorization
//     bearer tokens and binds the request to their account
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed for
// Kubernetes probes. MetricsServer exposes Prometheus metrics on a separate
// listener.
package server
