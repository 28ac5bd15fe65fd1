package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/oauth2"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/google"
	"github.com/teemow/gcal-mcp/internal/instrumentation"
	"github.com/teemow/gcal-mcp/internal/logging"
)

// Headers carrying a Google token forwarded by the MCP client or a proxy
// in front of the server.
const (
	HeaderGoogleAccessToken  = "X-Google-Access-Token"
	HeaderGoogleRefreshToken = "X-Google-Refresh-Token"
	HeaderGoogleTokenExpiry  = "X-Google-Token-Expiry"
	HeaderGoogleAccount      = "X-Google-Account"
)

const (
	tokenSourceGoogle        = "google"
	tokenSourceAuthorization = "authorization"

	maxAccountLength = 254

	// Google access tokens are issued for an hour.
	defaultForwardedTokenLifetime = time.Hour
)

// contextKey is the type for context keys
type contextKey string

const (
	accountContextKey     contextKey = "google_account"
	httpRequestContextKey contextKey = "http_request"
)

// derivedAccountPrefix marks accounts named after a token hash.
const derivedAccountPrefix = "fwd-"

// WithAccount returns a context carrying the account a request acts for.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// AccountFromContext returns the account set by WithAccount.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountContextKey).(string)
	return account, ok && account != ""
}

// WithHTTPRequest marks ctx as serving a request that arrived over HTTP.
func WithHTTPRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, httpRequestContextKey, true)
}

// IsHTTPRequest reports whether ctx was marked by WithHTTPRequest. Calls
// over HTTP only act for the account bound by ForwardedTokenMiddleware.
func IsHTTPRequest(ctx context.Context) bool {
	marked, _ := ctx.Value(httpRequestContextKey).(bool)
	return marked
}

// ErrorResponse is the JSON body of a rejected request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: code, ErrorDescription: description})
}

// ForwardedTokenMiddleware stores a Google token sent with the request and
// binds the request to its account. Requests without a token use the
// server's own default account. X-Google-Account may not name the default
// account, an account with a token on disk or a derived account.
func ForwardedTokenMiddleware(sc *ServerContext, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(WithHTTPRequest(r.Context()))

		token, source, err := forwardedToken(r)
		if err != nil {
			sc.Metrics().RecordForwardedToken(r.Context(), source, instrumentation.ResultRejected)
			writeError(w, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}
		if token == nil {
			next.ServeHTTP(w, r)
			return
		}

		account := r.Header.Get(HeaderGoogleAccount)
		if account == "" {
			account = accountForToken(token.AccessToken)
		} else if !validForwardedAccount(account) {
			sc.Metrics().RecordForwardedToken(r.Context(), source, instrumentation.ResultRejected)
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid "+HeaderGoogleAccount+" header")
			return
		} else if reservedAccount(account) {
			sc.Metrics().RecordForwardedToken(r.Context(), source, instrumentation.ResultRejected)
			writeError(w, http.StatusForbidden, "invalid_request", HeaderGoogleAccount+" names an account owned by the server")
			return
		}

		if err := sc.SaveForwardedToken(r.Context(), account, token); err != nil {
			slog.Error("failed to store forwarded token",
				logging.UserHash(account),
				logging.Err(err))
			sc.Metrics().RecordForwardedToken(r.Context(), source, instrumentation.ResultFailure)
			writeError(w, http.StatusInternalServerError, "server_error", "Failed to store token")
			return
		}

		slog.Debug("forwarded token accepted",
			logging.UserHash(account),
			slog.String("source", source),
			slog.String("token", logging.SanitizeToken(token.AccessToken)))
		sc.Metrics().RecordForwardedToken(r.Context(), source, instrumentation.ResultSuccess)

		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}

// forwardedToken extracts the token from the request headers. It returns a
// nil token when the request carries none.
func forwardedToken(r *http.Request) (*oauth2.Token, string, error) {
	source := tokenSourceGoogle
	accessToken := strings.TrimSpace(r.Header.Get(HeaderGoogleAccessToken))

	if accessToken == "" {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			return nil, "", nil
		}
		source = tokenSourceAuthorization
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			return nil, source, errInvalidAuthorization
		}
		accessToken = strings.TrimSpace(parts[1])
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: r.Header.Get(HeaderGoogleRefreshToken),
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(defaultForwardedTokenLifetime),
	}

	if expiry := r.Header.Get(HeaderGoogleTokenExpiry); expiry != "" {
		t, err := time.Parse(time.RFC3339, expiry)
		if err != nil {
			return nil, source, errInvalidExpiry
		}
		token.Expiry = t
	}

	return token, source, nil
}

type headerError string

func (e headerError) Error() string { return string(e) }

const (
	errInvalidAuthorization headerError = "Invalid Authorization header format"
	errInvalidExpiry        headerError = "Invalid " + HeaderGoogleTokenExpiry + " header, expected RFC 3339"
)

// accountForToken derives a stable account name from the token itself.
func accountForToken(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return derivedAccountPrefix + hex.EncodeToString(sum[:8])
}

// reservedAccount reports whether account belongs to the server rather than
// to a forwarding caller.
func reservedAccount(account string) bool {
	return account == calendar.DefaultAccount ||
		strings.HasPrefix(account, derivedAccountPrefix) ||
		google.HasTokenForAccount(account)
}

func validForwardedAccount(account string) bool {
	if len(account) > maxAccountLength {
		return false
	}
	for _, r := range account {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
