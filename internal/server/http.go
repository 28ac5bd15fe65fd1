package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcal-mcp/internal/logging"
)

// Transport types served over HTTP.
const (
	TransportStreamableHTTP = "streamable-http"
	TransportSSE            = "sse"
)

// DefaultEndpointPath is where the streamable HTTP transport is mounted.
const DefaultEndpointPath = "/mcp"

// HTTPServerConfig holds configuration for the HTTP transport.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Transport is TransportStreamableHTTP (default) or TransportSSE.
	Transport string

	// RateLimit is the number of requests per second allowed per client.
	// Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the burst size per client.
	RateBurst int

	// TrustProxy takes client addresses from X-Forwarded-For.
	TrustProxy bool
}

// HTTPServer serves the MCP server over HTTP with forwarded-token support,
// rate limiting and health endpoints.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	sc         *ServerContext
	health     *HealthChecker
	limiter    *RateLimiter
	config     HTTPServerConfig
	httpServer *http.Server
}

// NewHTTPServer creates a new HTTP server for MCP.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if config.Transport == "" {
		config.Transport = TransportStreamableHTTP
	}
	if config.Transport != TransportStreamableHTTP && config.Transport != TransportSSE {
		return nil, fmt.Errorf("unsupported server type: %s", config.Transport)
	}

	s := &HTTPServer{
		mcpServer: mcpServer,
		sc:        sc,
		health:    NewHealthChecker(sc),
		config:    config,
	}
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst == 0 {
			burst = DefaultRateBurst
		}
		s.limiter = NewRateLimiter(config.RateLimit, burst, config.TrustProxy)
	}
	return s, nil
}

// Health returns the health checker so callers can flip readiness.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler builds the HTTP handler tree.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.health.RegisterHealthEndpoints(mux)

	switch s.config.Transport {
	case TransportSSE:
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
			mcpserver.WithSSEContextFunc(accountContextFunc),
		)
		mux.Handle("/sse", s.wrap(sseServer))
		mux.Handle("/message", s.wrap(sseServer))

	default:
		streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath(DefaultEndpointPath),
			mcpserver.WithHTTPContextFunc(accountContextFunc),
			mcpserver.WithLogger(logging.NewSlogAdapter(slog.Default().With("component", "mcp-http"))),
		)
		mux.Handle(DefaultEndpointPath, s.wrap(streamable))
	}

	return mux
}

// wrap applies the middleware chain. Outermost first: request metrics,
// rate limiting, forwarded tokens.
func (s *HTTPServer) wrap(next http.Handler) http.Handler {
	h := ForwardedTokenMiddleware(s.sc, next)
	if s.limiter != nil {
		h = s.limiter.Middleware(s.sc, h)
	}
	return RequestMetricsMiddleware(s.sc, h)
}

// accountContextFunc marks the context handed to tool handlers as an HTTP
// call and copies the request's account into it.
func accountContextFunc(ctx context.Context, r *http.Request) context.Context {
	ctx = WithHTTPRequest(ctx)
	if account, ok := AccountFromContext(r.Context()); ok {
		return WithAccount(ctx, account)
	}
	return ctx
}

// Start serves until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("starting MCP HTTP server",
		"addr", s.config.Addr,
		"transport", s.config.Transport,
		"rate_limit", s.config.RateLimit)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// statusRecorder captures the response status. It keeps Flush working for
// streaming responses.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestMetricsMiddleware records every request in the HTTP metrics.
func RequestMetricsMiddleware(sc *ServerContext, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		sc.Metrics().RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
