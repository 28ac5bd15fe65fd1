package calendar_tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/google"
	"github.com/teemow/gcal-mcp/internal/server"
)

// recordedRequest is a request seen by the fake Calendar API.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   map[string]interface{}
}

// fakeAPI answers Calendar API calls with canned responses keyed by
// "METHOD path" and records every request.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	requests  []recordedRequest
}

type fakeResponse struct {
	status int
	body   string
}

func (f *fakeAPI) handle(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = fakeResponse{status: status, body: body}
}

func (f *fakeAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return recordedRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/calendar/v3")
	rec := recordedRequest{Method: r.Method, Path: path, Query: r.URL.Query()}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	resp, ok := f.responses[r.Method+" "+path]
	f.mu.Unlock()

	if !ok {
		resp = fakeResponse{status: http.StatusNotFound, body: `{"error":{"code":404,"message":"Not Found"}}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func isolateCredentials(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	for _, key := range []string{"ACCESS_TOKEN", "REFRESH_TOKEN", "API_KEY", "CLIENT_ID", "CLIENT_SECRET"} {
		name := google.IntegrationPrefix + "_" + key
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
}

// newToolServer registers the calendar tools against a fake API.
func newToolServer(t *testing.T, readOnly bool) (*mcpserver.MCPServer, *fakeAPI) {
	t.Helper()
	s, api, _ := newToolServerWith(t, server.WithIntegration(&google.Integration{AccessToken: "test-token"}), server.WithReadOnly(readOnly))
	return s, api
}

func newToolServerWith(t *testing.T, opts ...server.Option) (*mcpserver.MCPServer, *fakeAPI, *server.ServerContext) {
	t.Helper()
	isolateCredentials(t)

	api := &fakeAPI{responses: map[string]fakeResponse{}}
	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)

	opts = append(opts, server.WithClientOptions(calendar.WithEndpoint(upstream.URL+"/calendar/v3/")))
	sc, err := server.NewServerContext(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("gcal-mcp-test", "0.0.0", mcpserver.WithToolCapabilities(false))
	require.NoError(t, RegisterCalendarTools(s, sc, sc.ReadOnly()))
	return s, api, sc
}

func callTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

var writeTools = []string{
	"calendar_quick_add_event",
	"calendar_create_event",
	"calendar_update_event",
	"calendar_patch_event",
	"calendar_delete_event",
	"calendar_move_event",
	"calendar_import_event",
	"calendar_watch_events",
	"calendar_create_calendar",
	"calendar_update_calendar",
	"calendar_patch_calendar",
	"calendar_delete_calendar",
	"calendar_clear_calendar",
	"calendar_add_calendar_list_entry",
	"calendar_update_calendar_list_entry",
	"calendar_patch_calendar_list_entry",
	"calendar_remove_calendar_list_entry",
	"calendar_watch_calendar_list",
	"calendar_create_acl_rule",
	"calendar_update_acl_rule",
	"calendar_patch_acl_rule",
	"calendar_delete_acl_rule",
	"calendar_watch_acl",
	"calendar_watch_settings",
	"calendar_stop_channel",
}

var readTools = []string{
	"calendar_get_today_events",
	"calendar_list_events",
	"calendar_get_event",
	"calendar_get_event_instances",
	"calendar_get_calendar",
	"calendar_list_calendars",
	"calendar_get_calendar_list_entry",
	"calendar_list_acl",
	"calendar_get_acl_rule",
	"calendar_query_freebusy",
	"calendar_find_available_time",
	"calendar_get_colors",
	"calendar_list_settings",
	"calendar_get_setting",
}

func TestRegisterCalendarTools(t *testing.T) {
	s, _ := newToolServer(t, false)

	tools := s.ListTools()
	assert.Len(t, tools, len(readTools)+len(writeTools))
	for _, name := range append(append([]string{}, readTools...), writeTools...) {
		assert.NotNil(t, s.GetTool(name), name)
	}
}

func TestRegisterCalendarTools_ReadOnly(t *testing.T) {
	s, _ := newToolServer(t, true)

	for _, name := range readTools {
		assert.NotNil(t, s.GetTool(name), name)
	}
	for _, name := range writeTools {
		assert.Nil(t, s.GetTool(name), name)
	}
}

func TestRegisterCalendarTools_ReadOnlyArgument(t *testing.T) {
	isolateCredentials(t)
	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	require.False(t, sc.ReadOnly())

	s := mcpserver.NewMCPServer("gcal-mcp-test", "0.0.0", mcpserver.WithToolCapabilities(false))
	require.NoError(t, RegisterCalendarTools(s, sc, true))

	assert.Len(t, s.ListTools(), len(readTools))
	for _, name := range writeTools {
		assert.Nil(t, s.GetTool(name), name)
	}
}

func TestListEvents(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodGet, "/calendars/work@example.com/events", http.StatusOK, `{
		"summary": "Work",
		"timeZone": "Europe/Berlin",
		"items": [{"id": "ev1", "summary": "Standup", "start": {"dateTime": "2026-03-02T09:00:00Z"}}]
	}`)

	result := callTool(t, s, "calendar_list_events", map[string]interface{}{
		"calendarId": "work@example.com",
		"query":      "standup",
		"maxResults": float64(5),
	})

	require.False(t, result.IsError, resultText(result))
	assert.Contains(t, resultText(result), "Standup")
	assert.Contains(t, resultText(result), "ev1")

	req := api.last()
	assert.Equal(t, []string{"standup"}, req.Query["q"])
	assert.Equal(t, []string{"5"}, req.Query["maxResults"])
	assert.Equal(t, []string{"true"}, req.Query["singleEvents"])
	assert.NotEmpty(t, req.Query["timeMin"])
}

func TestListEvents_Raw(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodGet, "/calendars/primary/events", http.StatusOK,
		`{"items": [{"id": "ev1", "summary": "Standup"}], "nextSyncToken": "sync-1"}`)

	result := callTool(t, s, "calendar_list_events", map[string]interface{}{"raw": true})

	require.False(t, result.IsError, resultText(result))
	var events map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(result)), &events))
	assert.Equal(t, "sync-1", events["nextSyncToken"])

	// Raw mode selects the same events as the text summary.
	req := api.last()
	assert.NotEmpty(t, req.Query["timeMin"])
	assert.Equal(t, []string{"10"}, req.Query["maxResults"])
	assert.Equal(t, []string{"true"}, req.Query["singleEvents"])
	assert.Equal(t, []string{"startTime"}, req.Query["orderBy"])
}

func TestListEvents_RawSyncToken(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodGet, "/calendars/primary/events", http.StatusOK, `{"nextSyncToken": "sync-2"}`)

	result := callTool(t, s, "calendar_list_events", map[string]interface{}{"raw": true, "syncToken": "sync-1"})

	require.False(t, result.IsError, resultText(result))
	req := api.last()
	assert.Equal(t, []string{"sync-1"}, req.Query["syncToken"])
	assert.Empty(t, req.Query["timeMin"])
	assert.Empty(t, req.Query["orderBy"])
}

func TestListEvents_InvalidMaxResults(t *testing.T) {
	s, api := newToolServer(t, false)

	result := callTool(t, s, "calendar_list_events", map[string]interface{}{"maxResults": 2.5})

	assert.True(t, result.IsError)
	assert.Equal(t, 0, api.count())
}

func TestGetEvent_NotFound(t *testing.T) {
	s, _ := newToolServer(t, false)

	result := callTool(t, s, "calendar_get_event", map[string]interface{}{"eventId": "missing"})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "Failed to get event: Google Calendar API returned 404")
}

func TestGetEvent_RequiresEventID(t *testing.T) {
	s, api := newToolServer(t, false)

	result := callTool(t, s, "calendar_get_event", map[string]interface{}{})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "eventId is required")
	assert.Equal(t, 0, api.count())
}

func TestCreateEvent_Fields(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/calendars/primary/events", http.StatusOK,
		`{"id": "new1", "summary": "Planning", "hangoutLink": "https://meet.google.com/abc"}`)

	result := callTool(t, s, "calendar_create_event", map[string]interface{}{
		"summary":       "Planning",
		"start":         "2026-03-02T10:00:00Z",
		"end":           "2026-03-02T11:00:00Z",
		"attendees":     "alice@example.com, bob@example.com",
		"recurrence":    "RRULE:FREQ=WEEKLY;BYDAY=MO,WE",
		"addGoogleMeet": true,
		"sendUpdates":   "all",
	})

	require.False(t, result.IsError, resultText(result))
	assert.Contains(t, resultText(result), `"id": "new1"`)

	req := api.last()
	assert.Equal(t, []string{"1"}, req.Query["conferenceDataVersion"])
	assert.Equal(t, []string{"all"}, req.Query["sendUpdates"])
	assert.Equal(t, "Planning", req.Body["summary"])
	assert.Len(t, req.Body["attendees"], 2)
	assert.Equal(t, []interface{}{"RRULE:FREQ=WEEKLY;BYDAY=MO,WE"}, req.Body["recurrence"])
	assert.Contains(t, req.Body, "conferenceData")
}

func TestCreateEvent_EventObject(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/calendars/primary/events", http.StatusOK, `{"id": "new2"}`)

	result := callTool(t, s, "calendar_create_event", map[string]interface{}{
		"event": `{"summary": "Offsite", "start": {"date": "2026-04-01"}, "end": {"date": "2026-04-02"}}`,
	})

	require.False(t, result.IsError, resultText(result))
	req := api.last()
	assert.Equal(t, "Offsite", req.Body["summary"])
	assert.Empty(t, req.Query["conferenceDataVersion"])
}

func TestCreateEvent_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		wantMsg string
	}{
		{
			name:    "nothing given",
			args:    map[string]interface{}{},
			wantMsg: "event or summary, start and end are required",
		},
		{
			name:    "end before start",
			args:    map[string]interface{}{"summary": "x", "start": "2026-03-02T11:00:00Z", "end": "2026-03-02T10:00:00Z"},
			wantMsg: "end must not be before start",
		},
		{
			name:    "bad start",
			args:    map[string]interface{}{"summary": "x", "start": "next monday"},
			wantMsg: "invalid start",
		},
		{
			name:    "bad sendUpdates",
			args:    map[string]interface{}{"event": map[string]interface{}{"summary": "x"}, "sendUpdates": "everyone"},
			wantMsg: "invalid sendUpdates",
		},
		{
			name:    "event not an object",
			args:    map[string]interface{}{"event": float64(3)},
			wantMsg: "event must be a JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, api := newToolServer(t, false)

			result := callTool(t, s, "calendar_create_event", tt.args)

			assert.True(t, result.IsError)
			assert.Contains(t, resultText(result), tt.wantMsg)
			assert.Equal(t, 0, api.count())
		})
	}
}

func TestPatchEvent_OnlyGivenFields(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPatch, "/calendars/primary/events/ev1", http.StatusOK, `{"id": "ev1", "location": "Room 2"}`)

	result := callTool(t, s, "calendar_patch_event", map[string]interface{}{
		"eventId":  "ev1",
		"location": "Room 2",
	})

	require.False(t, result.IsError, resultText(result))
	req := api.last()
	assert.Equal(t, map[string]interface{}{"location": "Room 2"}, req.Body)
}

func TestPatchEvent_ExplicitFalse(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		wantBody map[string]interface{}
	}{
		{
			name: "event object",
			args: map[string]interface{}{
				"eventId": "ev1",
				"event":   map[string]interface{}{"guestsCanModify": false, "locked": false, "summary": "x"},
			},
			wantBody: map[string]interface{}{"guestsCanModify": false, "locked": false, "summary": "x"},
		},
		{
			name: "event string",
			args: map[string]interface{}{
				"eventId": "ev1",
				"event":   `{"anyoneCanAddSelf": false}`,
			},
			wantBody: map[string]interface{}{"anyoneCanAddSelf": false},
		},
		{
			name: "flat fields",
			args: map[string]interface{}{
				"eventId":                 "ev1",
				"summary":                 "x",
				"guestsCanModify":         false,
				"guestsCanInviteOthers":   false,
				"guestsCanSeeOtherGuests": false,
			},
			wantBody: map[string]interface{}{
				"summary":                 "x",
				"guestsCanModify":         false,
				"guestsCanInviteOthers":   false,
				"guestsCanSeeOtherGuests": false,
			},
		},
		{
			name: "flat false alone",
			args: map[string]interface{}{
				"eventId":         "ev1",
				"guestsCanModify": false,
			},
			wantBody: map[string]interface{}{"guestsCanModify": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, api := newToolServer(t, false)
			api.handle(http.MethodPatch, "/calendars/primary/events/ev1", http.StatusOK, `{"id": "ev1"}`)

			result := callTool(t, s, "calendar_patch_event", tt.args)

			require.False(t, result.IsError, resultText(result))
			assert.Equal(t, tt.wantBody, api.last().Body)
		})
	}
}

func TestCreateEvent_FlatFieldsMergeIntoEventObject(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/calendars/primary/events", http.StatusOK, `{"id": "new3"}`)

	result := callTool(t, s, "calendar_create_event", map[string]interface{}{
		"event": map[string]interface{}{
			"summary":     "Object summary",
			"description": "kept",
			"start":       map[string]interface{}{"dateTime": "2026-03-02T10:00:00Z"},
			"end":         map[string]interface{}{"dateTime": "2026-03-02T11:00:00Z"},
		},
		"summary":       "Flat summary",
		"addGoogleMeet": true,
	})

	require.False(t, result.IsError, resultText(result))
	req := api.last()
	assert.Equal(t, []string{"1"}, req.Query["conferenceDataVersion"])
	assert.Equal(t, "Flat summary", req.Body["summary"])
	assert.Equal(t, "kept", req.Body["description"])
	assert.Equal(t, map[string]interface{}{"dateTime": "2026-03-02T10:00:00Z"}, req.Body["start"])
	assert.Contains(t, req.Body, "conferenceData")
}

func TestPatchCalendarListEntry_ObjectExplicitFalse(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPatch, "/users/me/calendarList/team@example.com", http.StatusOK, `{"id": "team@example.com"}`)

	result := callTool(t, s, "calendar_patch_calendar_list_entry", map[string]interface{}{
		"calendarId": "team@example.com",
		"entry":      map[string]interface{}{"selected": false},
	})

	require.False(t, result.IsError, resultText(result))
	assert.Equal(t, map[string]interface{}{"selected": false}, api.last().Body)
}

func TestUpdateEvent_RequiresEvent(t *testing.T) {
	s, _ := newToolServer(t, false)

	result := callTool(t, s, "calendar_update_event", map[string]interface{}{"eventId": "ev1"})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "event is required")
}

func TestDeleteEvent_Single(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodDelete, "/calendars/primary/events/ev1", http.StatusNoContent, "")

	result := callTool(t, s, "calendar_delete_event", map[string]interface{}{
		"eventId":     "ev1",
		"sendUpdates": "none",
	})

	require.False(t, result.IsError, resultText(result))
	assert.Equal(t, "Event ev1 deleted successfully", resultText(result))
	assert.Equal(t, []string{"none"}, api.last().Query["sendUpdates"])
}

func TestDeleteEvent_Batch(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodDelete, "/calendars/primary/events/ev1", http.StatusNoContent, "")

	result := callTool(t, s, "calendar_delete_event", map[string]interface{}{
		"eventId": []interface{}{"ev1", "gone"},
	})

	require.False(t, result.IsError, resultText(result))
	var summary struct {
		Total      int `json:"total"`
		Successful int `json:"successful"`
		Failed     int `json:"failed"`
		Results    []struct {
			ID    string `json:"id"`
			Error string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(result)), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "gone", summary.Results[1].ID)
	assert.Contains(t, summary.Results[1].Error, "404")
}

func TestDeleteEvent_BatchAllFailed(t *testing.T) {
	s, _ := newToolServer(t, false)

	result := callTool(t, s, "calendar_delete_event", map[string]interface{}{
		"eventId": `["a", "b"]`,
	})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), `"failed": 2`)
}

func TestMoveEvent(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/calendars/primary/events/ev1/move", http.StatusOK, `{"id": "ev1", "organizer": {"email": "team@example.com"}}`)

	result := callTool(t, s, "calendar_move_event", map[string]interface{}{
		"eventId":     "ev1",
		"destination": "team@example.com",
	})

	require.False(t, result.IsError, resultText(result))
	assert.Equal(t, []string{"team@example.com"}, api.last().Query["destination"])
}

func TestWatchEvents(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/calendars/primary/events/watch", http.StatusOK,
		`{"id": "chan-1", "resourceId": "res-1", "expiration": "1767225600000"}`)

	result := callTool(t, s, "calendar_watch_events", map[string]interface{}{
		"address":   "https://hooks.example.com/calendar",
		"channelId": "chan-1",
		"ttl":       float64(3600),
	})

	require.False(t, result.IsError, resultText(result))
	req := api.last()
	assert.Equal(t, "chan-1", req.Body["id"])
	assert.Equal(t, "web_hook", req.Body["type"])
	assert.Equal(t, map[string]interface{}{"ttl": "3600"}, req.Body["params"])
}

func TestWatchEvents_RequiresAddress(t *testing.T) {
	s, api := newToolServer(t, false)

	result := callTool(t, s, "calendar_watch_events", map[string]interface{}{})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "address is required")
	assert.Equal(t, 0, api.count())
}

func TestStopChannel(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/channels/stop", http.StatusNoContent, "")

	result := callTool(t, s, "calendar_stop_channel", map[string]interface{}{
		"channelId":  "chan-1",
		"resourceId": "res-1",
	})

	require.False(t, result.IsError, resultText(result))
	assert.Equal(t, "res-1", api.last().Body["resourceId"])
}

func TestCreateCalendar(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/calendars", http.StatusOK, `{"id": "cal-1", "summary": "Team"}`)

	result := callTool(t, s, "calendar_create_calendar", map[string]interface{}{
		"summary":  "Team",
		"timeZone": "Europe/Berlin",
	})

	require.False(t, result.IsError, resultText(result))
	assert.Equal(t, "Europe/Berlin", api.last().Body["timeZone"])
}

func TestGetCalendar(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodGet, "/calendars/primary", http.StatusOK,
		`{"id": "me@example.com", "summary": "Me", "timeZone": "UTC"}`)

	result := callTool(t, s, "calendar_get_calendar", map[string]interface{}{})

	require.False(t, result.IsError, resultText(result))
	assert.Contains(t, resultText(result), "Calendar: Me")
	assert.Contains(t, resultText(result), "Time Zone: UTC")
}

func TestListCalendars(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodGet, "/users/me/calendarList", http.StatusOK, `{
		"items": [
			{"id": "me@example.com", "summary": "Me", "primary": true, "accessRole": "owner"},
			{"id": "team@example.com", "summary": "Team", "accessRole": "reader"}
		],
		"nextPageToken": "page-2"
	}`)

	result := callTool(t, s, "calendar_list_calendars", map[string]interface{}{"minAccessRole": "reader"})

	require.False(t, result.IsError, resultText(result))
	text := resultText(result)
	assert.Contains(t, text, "Found 2 calendar(s)")
	assert.Contains(t, text, "[PRIMARY]")
	assert.Contains(t, text, "page-2")
	assert.Equal(t, []string{"reader"}, api.last().Query["minAccessRole"])
}

func TestPatchCalendarListEntry_RGB(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPatch, "/users/me/calendarList/team@example.com", http.StatusOK, `{"id": "team@example.com"}`)

	result := callTool(t, s, "calendar_patch_calendar_list_entry", map[string]interface{}{
		"calendarId":      "team@example.com",
		"backgroundColor": "#0088aa",
		"hidden":          false,
	})

	require.False(t, result.IsError, resultText(result))
	req := api.last()
	assert.Equal(t, []string{"true"}, req.Query["colorRgbFormat"])
	assert.Equal(t, "#0088aa", req.Body["backgroundColor"])
	assert.Equal(t, false, req.Body["hidden"])
}

func TestCreateACLRule(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/calendars/primary/acl", http.StatusOK, `{"id": "user:alice@example.com", "role": "reader"}`)

	result := callTool(t, s, "calendar_create_acl_rule", map[string]interface{}{
		"role":              "reader",
		"scopeType":         "user",
		"scopeValue":        "alice@example.com",
		"sendNotifications": false,
	})

	require.False(t, result.IsError, resultText(result))
	req := api.last()
	assert.Equal(t, []string{"false"}, req.Query["sendNotifications"])
	assert.Equal(t, map[string]interface{}{"type": "user", "value": "alice@example.com"}, req.Body["scope"])
}

func TestCreateACLRule_MissingScope(t *testing.T) {
	s, api := newToolServer(t, false)

	result := callTool(t, s, "calendar_create_acl_rule", map[string]interface{}{"role": "reader"})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "scope")
	assert.Equal(t, 0, api.count())
}

func TestListACL(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodGet, "/calendars/primary/acl", http.StatusOK, `{
		"items": [
			{"id": "default", "role": "freeBusyReader", "scope": {"type": "default"}},
			{"id": "user:bob@example.com", "role": "writer", "scope": {"type": "user", "value": "bob@example.com"}}
		]
	}`)

	result := callTool(t, s, "calendar_list_acl", map[string]interface{}{})

	require.False(t, result.IsError, resultText(result))
	text := resultText(result)
	assert.Contains(t, text, "Found 2 access rule(s)")
	assert.Contains(t, text, "user:bob@example.com")
	assert.Contains(t, text, "Role: writer")
}

func TestQueryFreeBusy(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/freeBusy", http.StatusOK, `{
		"calendars": {
			"alice@example.com": {"busy": [{"start": "2026-03-02T10:00:00Z", "end": "2026-03-02T11:00:00Z"}]},
			"bob@example.com": {"busy": []}
		}
	}`)

	result := callTool(t, s, "calendar_query_freebusy", map[string]interface{}{
		"timeMin":   "2026-03-02T08:00:00Z",
		"timeMax":   "2026-03-02T18:00:00Z",
		"calendars": "alice@example.com,bob@example.com",
	})

	require.False(t, result.IsError, resultText(result))
	text := resultText(result)
	assert.Contains(t, text, "Free/Busy information for 2 calendar(s)")
	assert.Contains(t, text, "2026-03-02 10:00 to 2026-03-02 11:00")
	assert.Contains(t, text, "FREE for entire range")
	assert.Len(t, api.last().Body["items"], 2)
}

func TestFindAvailableTime(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodPost, "/freeBusy", http.StatusOK, `{
		"calendars": {
			"alice@example.com": {"busy": [{"start": "2026-03-02T09:00:00Z", "end": "2026-03-02T10:00:00Z"}]}
		}
	}`)

	result := callTool(t, s, "calendar_find_available_time", map[string]interface{}{
		"attendees":       "alice@example.com",
		"durationMinutes": float64(30),
		"timeMin":         "2026-03-02T09:00:00Z",
		"timeMax":         "2026-03-02T11:00:00Z",
		"maxResults":      float64(2),
	})

	require.False(t, result.IsError, resultText(result))
	assert.Contains(t, resultText(result), "Found 2 available time slot(s) for 30 minute meeting")
}

func TestFindAvailableTime_Invalid(t *testing.T) {
	s, api := newToolServer(t, false)

	result := callTool(t, s, "calendar_find_available_time", map[string]interface{}{
		"attendees":       "alice@example.com",
		"durationMinutes": float64(0),
		"timeMin":         "2026-03-02T09:00:00Z",
		"timeMax":         "2026-03-02T11:00:00Z",
	})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "durationMinutes")
	assert.Equal(t, 0, api.count())
}

func TestSettingsTools(t *testing.T) {
	s, api := newToolServer(t, false)
	api.handle(http.MethodGet, "/users/me/settings/timezone", http.StatusOK, `{"id": "timezone", "value": "Europe/Berlin"}`)
	api.handle(http.MethodGet, "/users/me/settings", http.StatusOK, `{
		"items": [{"id": "weekStart", "value": "1"}, {"id": "locale", "value": "en"}]
	}`)
	api.handle(http.MethodGet, "/colors", http.StatusOK, `{"event": {"1": {"background": "#a4bdfc", "foreground": "#1d1d1d"}}}`)

	result := callTool(t, s, "calendar_get_setting", map[string]interface{}{"setting": "timezone"})
	require.False(t, result.IsError, resultText(result))
	assert.Equal(t, "timezone: Europe/Berlin", resultText(result))

	result = callTool(t, s, "calendar_list_settings", map[string]interface{}{})
	require.False(t, result.IsError, resultText(result))
	assert.Equal(t, "Found 2 setting(s):\n\nlocale: en\nweekStart: 1\n", resultText(result))

	result = callTool(t, s, "calendar_get_colors", map[string]interface{}{})
	require.False(t, result.IsError, resultText(result))
	assert.Contains(t, resultText(result), "#a4bdfc")
}

func TestForwardedAccountIsUsed(t *testing.T) {
	s, api, sc := newToolServerWith(t)
	api.handle(http.MethodGet, "/colors", http.StatusOK, `{"kind": "calendar#colors"}`)
	require.NoError(t, sc.SaveForwardedToken(context.Background(), "fwd-abc", &oauth2.Token{AccessToken: "forwarded", TokenType: "Bearer"}))

	tool := s.GetTool("calendar_get_colors")
	require.NotNil(t, tool)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"account": "unknown"}

	// Without the forwarded account the "unknown" account has no token.
	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "unknown")

	result, err = tool.Handler(server.WithAccount(context.Background(), "fwd-abc"), req)
	require.NoError(t, err)
	assert.False(t, result.IsError, resultText(result))
}

func TestHTTPCallCannotBorrowForwardedAccount(t *testing.T) {
	s, api, sc := newToolServerWith(t)
	api.handle(http.MethodGet, "/colors", http.StatusOK, `{"kind": "calendar#colors"}`)
	require.NoError(t, sc.SaveForwardedToken(context.Background(), "alice", &oauth2.Token{AccessToken: "alice-token", TokenType: "Bearer"}))

	tool := s.GetTool("calendar_get_colors")
	require.NotNil(t, tool)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"account": "alice"}

	result, err := tool.Handler(server.WithHTTPRequest(context.Background()), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Zero(t, api.count())
}
