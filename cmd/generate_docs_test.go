package cmd

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"calendar_list_events", "Event Tools"},
		{"calendar_get_today_events", "Event Tools"},
		{"calendar_quick_add_event", "Event Tools"},
		{"calendar_list_acl", "Access Control Tools"},
		{"calendar_patch_acl_rule", "Access Control Tools"},
		{"calendar_list_calendars", "Calendar List Tools"},
		{"calendar_add_calendar_list_entry", "Calendar List Tools"},
		{"calendar_watch_calendar_list", "Calendar List Tools"},
		{"calendar_get_calendar", "Calendar Tools"},
		{"calendar_clear_calendar", "Calendar Tools"},
		{"calendar_query_freebusy", "Scheduling Tools"},
		{"calendar_find_available_time", "Scheduling Tools"},
		{"calendar_get_colors", "Settings Tools"},
		{"calendar_watch_settings", "Settings Tools"},
		{"calendar_stop_channel", "Notification Channel Tools"},
		{"google_get_auth_url", "Authentication Tools"},
		{"something_else", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getCategoryFromToolName(tt.name))
		})
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("calendar_list_acl",
		mcp.WithDescription("List access control rules"),
		mcp.WithString("calendarId", mcp.Required(), mcp.Description("Calendar ID")),
		mcp.WithString("role", mcp.Enum("reader", "owner")),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	md := generateToolMarkdown(tool)

	assert.Contains(t, md, "### calendar_list_acl\n\nList access control rules\n\n")
	assert.Contains(t, md, "*Read-only.*")
	assert.Contains(t, md, "- `calendarId` (string, required): Calendar ID\n")
	assert.Contains(t, md, "- `role` (string, optional): string parameter (one of: `reader`, `owner`)\n")
}

func TestBuildDocs(t *testing.T) {
	md, err := buildDocs(context.Background())
	require.NoError(t, err)

	assert.Contains(t, md, "# MCP Tools Reference")
	assert.Contains(t, md, "- [Event Tools](#event-tools)")
	assert.Contains(t, md, "### calendar_create_event")
	assert.Contains(t, md, "### google_save_auth_code")
	assert.Contains(t, md, "## Resources")
	assert.Contains(t, md, "### calendar://settings")
}
