package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger = WithOperation(logger, "events.list")
	logger = WithTool(logger, "calendar_list_events")
	logger = WithAccount(logger, "work")
	logger.Info("done")

	out := buf.String()
	for _, want := range []string{"operation=events.list", "tool=calendar_list_events", "account=work"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}
}

func TestStringAttrs(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"operation", Operation("events.get"), KeyOperation, "events.get"},
		{"service", Service("calendar"), KeyService, "calendar"},
		{"account", Account("work"), KeyAccount, "work"},
		{"tool", Tool("calendar_get_event"), KeyTool, "calendar_get_event"},
		{"status", Status(StatusSuccess), KeyStatus, "success"},
		{"event id", EventID("evt1"), KeyEventID, "evt1"},
		{"calendar id primary", CalendarID("primary"), KeyCalendarID, "primary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestCalendarID_HashesEmails(t *testing.T) {
	attr := CalendarID("alice@example.com")
	if strings.Contains(attr.Value.String(), "alice") {
		t.Errorf("CalendarID should not expose the address, got %q", attr.Value.String())
	}
	if attr.Value.String() != AnonymizeEmail("alice@example.com") {
		t.Errorf("CalendarID value = %q, want the anonymized address", attr.Value.String())
	}
}

func TestHTTPStatus(t *testing.T) {
	attr := HTTPStatus(404)
	if attr.Key != KeyHTTPStatus || attr.Value.Int64() != 404 {
		t.Errorf("HTTPStatus = %v, want %s=404", attr, KeyHTTPStatus)
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("quota exceeded"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "quota exceeded" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "quota exceeded")
	}

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("ok", Err(nil))
	if strings.Contains(buf.String(), KeyError+"=") {
		t.Errorf("Err(nil) should be omitted from output, got %q", buf.String())
	}
}

func TestAnonymizeEmail(t *testing.T) {
	if AnonymizeEmail("") != "" {
		t.Error("AnonymizeEmail(\"\") should be empty")
	}

	hash := AnonymizeEmail("test@example.com")
	if hash != AnonymizeEmail("test@example.com") {
		t.Error("AnonymizeEmail should return deterministic results")
	}
	if hash == AnonymizeEmail("other@example.com") {
		t.Error("Different emails should produce different hashes")
	}
	if !strings.HasPrefix(hash, "user:") || len(hash) != 21 {
		t.Errorf("AnonymizeEmail = %q, want user: prefix and 21 chars", hash)
	}
}

func TestUserHash(t *testing.T) {
	attr := UserHash("jane@example.com")
	if attr.Key != KeyUserHash {
		t.Errorf("UserHash key = %q, want %q", attr.Key, KeyUserHash)
	}
	if attr.Value.String() != AnonymizeEmail("jane@example.com") {
		t.Errorf("UserHash value = %q", attr.Value.String())
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"ya29.a0AfH6SMBx", "[token:15 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"team@group.calendar.google.com", "group.calendar.google.com"},
		{"invalid", ""},
		{"", ""},
		{"user@", ""},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ExtractDomain(tt.email); got != tt.expected {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, got, tt.expected)
			}
		})
	}

	attr := Domain("jane@example.com")
	if attr.Key != "user_domain" || attr.Value.String() != "example.com" {
		t.Errorf("Domain = %v", attr)
	}
}
