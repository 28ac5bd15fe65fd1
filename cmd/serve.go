package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/gcal-mcp/internal/google"
	"github.com/teemow/gcal-mcp/internal/instrumentation"
	"github.com/teemow/gcal-mcp/internal/resources"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/calendar_tools"
	"github.com/teemow/gcal-mcp/internal/tools/google_tools"
)

const transportStdio = "stdio"

// MetricsConfig holds configuration for the dedicated metrics server.
type MetricsConfig struct {
	// Enabled determines whether the metrics server is started (default: true)
	Enabled bool

	// Addr is the metrics server address (default: ":9090")
	Addr string
}

// ServeConfig holds the resolved serve command configuration.
type ServeConfig struct {
	Transport string
	HTTPAddr  string
	Yolo      bool
	Debug     bool

	RateLimit  float64
	RateBurst  int
	TrustProxy bool

	Metrics MetricsConfig
}

func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to provide Google Calendar tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport at /mcp
  - sse: Server-Sent Events at /sse and /message

Credentials are resolved per account in this order:
  1. GOOGLE_CALENDAR_ACCESS_TOKEN or GOOGLE_CALENDAR_API_KEY
  2. A token forwarded by the HTTP client (Authorization or X-Google-Access-Token)
  3. The token cached by "gcal-mcp auth"

The server starts in read-only mode. Pass --yolo to register the tools that
create, change or delete calendar data and open notification channels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnvVars(cmd, &config)
			return runServe(config)
		},
	}

	cmd.Flags().BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, streamable-http or sse")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for streamable-http and sse transports)")
	cmd.Flags().BoolVar(&config.Yolo, "yolo", false, "Enable write operations (event creation, calendar deletion, watch channels, etc.). Default is read-only mode.")

	cmd.Flags().Float64Var(&config.RateLimit, "rate-limit", server.DefaultRateLimit, "Requests per second allowed per client on the HTTP transports (0 disables). Can also use RATE_LIMIT env var.")
	cmd.Flags().IntVar(&config.RateBurst, "rate-burst", server.DefaultRateBurst, "Burst size per client on the HTTP transports. Can also use RATE_BURST env var.")
	cmd.Flags().BoolVar(&config.TrustProxy, "trust-proxy", false, "Identify clients by X-Forwarded-For (only behind a trusted reverse proxy). Can also use TRUST_PROXY env var.")

	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadServeEnvVars loads serve configuration from environment variables.
// Environment variables only override flag values when the flag was not explicitly set.
func loadServeEnvVars(cmd *cobra.Command, config *ServeConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		if enabled, ok := envBool("METRICS_ENABLED"); ok {
			config.Metrics.Enabled = enabled
		}
	}

	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Metrics.Addr = addr
		}
	}

	if !cmd.Flags().Changed("rate-limit") {
		if v := os.Getenv("RATE_LIMIT"); v != "" {
			if rps, err := strconv.ParseFloat(v, 64); err == nil && rps >= 0 {
				config.RateLimit = rps
			} else {
				slog.Warn("ignoring invalid RATE_LIMIT", "value", v)
			}
		}
	}

	if !cmd.Flags().Changed("rate-burst") {
		if v := os.Getenv("RATE_BURST"); v != "" {
			if burst, err := strconv.Atoi(v); err == nil && burst > 0 {
				config.RateBurst = burst
			} else {
				slog.Warn("ignoring invalid RATE_BURST", "value", v)
			}
		}
	}

	if !cmd.Flags().Changed("trust-proxy") {
		if trust, ok := envBool("TRUST_PROXY"); ok {
			config.TrustProxy = trust
		}
	}
}

// envBool reads a boolean environment variable. ok is false when the
// variable is unset or not a boolean.
func envBool(key string) (value bool, ok bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("ignoring invalid boolean environment variable", "key", key, "value", v)
		return false, false
	}
	return parsed, true
}

// setupLogging installs the default slog logger. Logs always go to stderr so
// they never mix with the stdio transport.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runServe(config ServeConfig) error {
	switch config.Transport {
	case transportStdio, server.TransportStreamableHTTP, server.TransportSSE:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http, sse)", config.Transport)
	}

	setupLogging(config.Debug)

	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Warn("error during instrumentation shutdown", "error", err)
		}
	}()

	var metricsServer *server.MetricsServer
	if config.Transport != transportStdio && config.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(config.Metrics, provider)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				slog.Warn("error during metrics server shutdown", "error", err)
			}
		}()
	}

	integration, err := google.LoadIntegration()
	if err != nil {
		return err
	}

	readOnly := !config.Yolo
	opts := []server.Option{
		server.WithIntegration(integration),
		server.WithReadOnly(readOnly),
	}
	if provider.Enabled() {
		opts = append(opts,
			server.WithInstrumentation(provider),
			server.WithAuditLogger(instrumentation.NewAuditLogger(slog.Default(), instrConfig.AuditLogging)),
		)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			slog.Warn("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := newMCPServer()
	if err := registerAll(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	if readOnly {
		slog.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		slog.Info("starting server with write operations enabled (--yolo flag is set)")
	}
	if integration.HasCredentials() {
		slog.Info("using credentials from the environment", "prefix", google.IntegrationPrefix)
	}

	if config.Transport == transportStdio {
		return runStdioServer(mcpSrv)
	}
	return runHTTPServer(shutdownCtx, mcpSrv, serverContext, config)
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("gcal-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
}

func startMetricsServer(config MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil {
			slog.Error("metrics server stopped", "addr", metricsServer.Addr(), "error", err)
		}
	}()
	return metricsServer, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func registerAll(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "Calendar tools",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Google auth tools",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, sc)
			},
		},
		{
			name: "Calendar resources",
			register: func() error {
				return resources.RegisterCalendarResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, config ServeConfig) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		Addr:       config.HTTPAddr,
		Transport:  config.Transport,
		RateLimit:  config.RateLimit,
		RateBurst:  config.RateBurst,
		TrustProxy: config.TrustProxy,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	fmt.Printf("Starting gcal-mcp MCP server with %s transport on %s\n", config.Transport, config.HTTPAddr)
	if config.Transport == server.TransportSSE {
		fmt.Printf("  SSE endpoint: /sse\n")
		fmt.Printf("  Message endpoint: /message\n")
	} else {
		fmt.Printf("  HTTP endpoint: %s\n", server.DefaultEndpointPath)
	}
	fmt.Printf("  Health endpoints: /healthz, /readyz, /healthz/detailed\n")
	if config.Metrics.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", config.Metrics.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}
