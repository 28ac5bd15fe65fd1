package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/google"
	"github.com/teemow/gcal-mcp/internal/server"
)

func disableColor(t *testing.T) {
	t.Helper()
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })
}

func TestPrintAgenda(t *testing.T) {
	disableColor(t)

	events := &gcal.Events{
		Summary:  "me@example.com",
		TimeZone: "UTC",
		Items: []*gcal.Event{
			{
				Summary:  "Standup",
				Location: "Room 1",
				Start:    &gcal.EventDateTime{DateTime: "2026-03-02T09:00:00Z"},
				End:      &gcal.EventDateTime{DateTime: "2026-03-02T09:15:00Z"},
			},
			{
				Start: &gcal.EventDateTime{Date: "2026-03-03"},
				End:   &gcal.EventDateTime{Date: "2026-03-04"},
			},
		},
	}
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	printAgenda(&out, events, start, 3, time.UTC)

	want := strings.Join([]string{
		"Agenda for me@example.com [tz: UTC]",
		"=== Monday (Mar 2) ===",
		" - Standup [09:00 --> 09:15] @ Room 1",
		"=== Tuesday (Mar 3) ===",
		" - (No title) (all day)",
		"=== Wednesday (Mar 4) ===",
		"No events.",
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
}

func TestPrintAgenda_ConvertsToLocation(t *testing.T) {
	disableColor(t)

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	events := &gcal.Events{
		Items: []*gcal.Event{{
			Summary: "Late call",
			Start:   &gcal.EventDateTime{DateTime: "2026-03-02T23:30:00Z"},
			End:     &gcal.EventDateTime{DateTime: "2026-03-03T00:30:00Z"},
		}},
	}
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, berlin)

	var out bytes.Buffer
	printAgenda(&out, events, start, 2, berlin)

	assert.Contains(t, out.String(), "=== Monday (Mar 2) ===\nNo events.\n=== Tuesday (Mar 3) ===\n - Late call [00:30 --> 01:30]\n")
}

func TestPrintAgendaForClient(t *testing.T) {
	disableColor(t)
	t.Setenv("HOME", t.TempDir())

	var query map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/calendar/v3/calendars/work@example.com/events", func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"timeMin":      r.URL.Query().Get("timeMin"),
			"timeMax":      r.URL.Query().Get("timeMax"),
			"singleEvents": r.URL.Query().Get("singleEvents"),
			"orderBy":      r.URL.Query().Get("orderBy"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"summary": "work@example.com",
			"timeZone": "UTC",
			"items": [{"summary": "Review", "start": {"dateTime": "2026-03-02T14:00:00Z"}, "end": {"dateTime": "2026-03-02T15:00:00Z"}}]
		}`))
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	sc, err := server.NewServerContext(context.Background(),
		server.WithIntegration(&google.Integration{AccessToken: "token"}),
		server.WithClientOptions(calendar.WithEndpoint(upstream.URL+"/calendar/v3/")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	now := time.Date(2026, 3, 2, 11, 45, 0, 0, time.UTC)
	opts := agendaOptions{Account: calendar.DefaultAccount, CalendarID: "work@example.com", Days: 1}

	var out bytes.Buffer
	require.NoError(t, printAgendaForClient(context.Background(), &out, sc, opts, now))

	assert.Equal(t, map[string]string{
		"timeMin":      "2026-03-02T00:00:00Z",
		"timeMax":      "2026-03-03T00:00:00Z",
		"singleEvents": "true",
		"orderBy":      "startTime",
	}, query)
	assert.Contains(t, out.String(), " - Review [14:00 --> 15:00]")
}

func TestPrintAgendaForClient_TimeZoneSetsDayWindow(t *testing.T) {
	disableColor(t)
	t.Setenv("HOME", t.TempDir())

	var timeMin, timeMax string
	mux := http.NewServeMux()
	mux.HandleFunc("/calendar/v3/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		timeMin = r.URL.Query().Get("timeMin")
		timeMax = r.URL.Query().Get("timeMax")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"summary": "me@example.com",
			"timeZone": "Asia/Tokyo",
			"items": [{"summary": "Breakfast", "start": {"dateTime": "2026-03-03T08:00:00+09:00"}, "end": {"dateTime": "2026-03-03T09:00:00+09:00"}}]
		}`))
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	sc, err := server.NewServerContext(context.Background(),
		server.WithIntegration(&google.Integration{AccessToken: "token"}),
		server.WithClientOptions(calendar.WithEndpoint(upstream.URL+"/calendar/v3/")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	// Still Monday in UTC, already Tuesday in Tokyo.
	now := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	opts := agendaOptions{Account: calendar.DefaultAccount, Days: 1, TimeZone: "Asia/Tokyo"}

	var out bytes.Buffer
	require.NoError(t, printAgendaForClient(context.Background(), &out, sc, opts, now))

	assert.Equal(t, "2026-03-03T00:00:00+09:00", timeMin)
	assert.Equal(t, "2026-03-04T00:00:00+09:00", timeMax)
	assert.Contains(t, out.String(), "=== Tuesday (Mar 3) ===\n - Breakfast [08:00 --> 09:00]\n")
	assert.NotContains(t, out.String(), "Monday")
}

func TestPrintAgendaForClient_InvalidTimeZone(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(),
		server.WithIntegration(&google.Integration{AccessToken: "token"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	opts := agendaOptions{Account: calendar.DefaultAccount, Days: 1, TimeZone: "Mars/Olympus"}
	err = printAgendaForClient(context.Background(), &bytes.Buffer{}, sc, opts, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid time zone "Mars/Olympus"`)
}

func TestAgendaCmd_RejectsNonPositiveDays(t *testing.T) {
	cmd := newAgendaCmd()
	cmd.SetArgs([]string{"--days", "0"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--days must be at least 1")
}
