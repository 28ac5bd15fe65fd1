package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/batch"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

// eventFieldOptions are the flat alternatives to an "event" object.
func eventFieldOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("summary",
			mcp.Description("Event title/summary"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("start",
			mcp.Description("Start time (RFC3339 format, e.g., '2025-01-15T14:00:00Z', or YYYY-MM-DD with allDay)"),
		),
		mcp.WithString("end",
			mcp.Description("End time (RFC3339 format, e.g., '2025-01-15T15:00:00Z', or YYYY-MM-DD with allDay)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone of start and end (e.g., 'America/New_York')"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("All-day event (ignores the time portion of start/end)"),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithString("recurrence",
			mcp.Description("Recurrence rules, one per line (e.g., 'RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR')"),
		),
		mcp.WithString("eventType",
			mcp.Description("Event type: 'default', 'outOfOffice', 'focusTime', 'workingLocation'"),
			mcp.Enum("default", "outOfOffice", "focusTime", "workingLocation"),
		),
		mcp.WithBoolean("addGoogleMeet",
			mcp.Description("Automatically add a Google Meet link to the event"),
		),
		mcp.WithBoolean("guestsCanModify",
			mcp.Description("Allow guests to modify the event"),
		),
		mcp.WithBoolean("guestsCanInviteOthers",
			mcp.Description("Allow guests to invite others"),
		),
		mcp.WithBoolean("guestsCanSeeOtherGuests",
			mcp.Description("Allow guests to see other guests"),
		),
	}
}

func writeOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		sendUpdatesOption(),
		mcp.WithNumber("conferenceDataVersion",
			mcp.Description("Set to 1 to create or keep conference data (Google Meet)"),
		),
		mcp.WithNumber("maxAttendees",
			mcp.Description("Maximum number of attendees included in the response"),
		),
		mcp.WithBoolean("supportsAttachments",
			mcp.Description("Whether the client supports event attachments"),
		),
	}
}

func newTool(name, description string, groups ...[]mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(description)}
	for _, group := range groups {
		opts = append(opts, group...)
	}
	return mcp.NewTool(name, opts...)
}

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Today's agenda
	todayTool := mcp.NewTool("calendar_get_today_events",
		mcp.WithDescription("Summarize the events of today or the next few days"),
		accountOption(),
		calendarIDOption(),
		mcp.WithNumber("days",
			mcp.Description("Number of days to include, starting today (default: 1)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone used in the response"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(todayTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_today_events", "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetTodayEvents(ctx, request, sc)
		}))

	// List events tool
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List/search calendar events. Without timeMin, lists upcoming events starting now."),
		accountOption(),
		calendarIDOption(),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default: 10)"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Lower bound (exclusive) for an event's end time (RFC3339 format, e.g., '2025-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Description("Upper bound (exclusive) for an event's start time (RFC3339 format)"),
		),
		mcp.WithString("query",
			mcp.Description("Free text search terms to filter events"),
		),
		mcp.WithString("orderBy",
			mcp.Description("Order of the results: 'startTime' (default) or 'updated'"),
			mcp.Enum("startTime", "updated"),
		),
		mcp.WithBoolean("singleEvents",
			mcp.Description("Expand recurring events into instances (default: true)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone used in the response"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token of the page to return"),
		),
		mcp.WithBoolean("showDeleted",
			mcp.Description("Include cancelled events"),
		),
		mcp.WithBoolean("showHiddenInvitations",
			mcp.Description("Include hidden invitations"),
		),
		mcp.WithString("updatedMin",
			mcp.Description("Only events modified after this time (RFC3339 format)"),
		),
		mcp.WithString("syncToken",
			mcp.Description("Token from a previous list call to return only changed entries"),
		),
		mcp.WithString("iCalUID",
			mcp.Description("Only events with this iCalendar UID"),
		),
		mcp.WithString("eventTypes",
			mcp.Description("Comma-separated event types to return"),
		),
		mcp.WithString("privateExtendedProperty",
			mcp.Description("Comma-separated propertyName=value constraints on private extended properties"),
		),
		mcp.WithString("sharedExtendedProperty",
			mcp.Description("Comma-separated propertyName=value constraints on shared extended properties"),
		),
		mcp.WithBoolean("raw",
			mcp.Description(rawDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_list_events", "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	// Get event tool
	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get details of a specific calendar event, including attendees"),
		accountOption(),
		calendarIDOption(),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
		mcp.WithNumber("maxAttendees",
			mcp.Description("Maximum number of attendees to include"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone used in the response"),
		),
		mcp.WithBoolean("raw",
			mcp.Description(rawDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_event", "events.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	// Instances of a recurring event
	instancesTool := mcp.NewTool("calendar_get_event_instances",
		mcp.WithDescription("List the occurrences of a recurring event"),
		accountOption(),
		calendarIDOption(),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the recurring event"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of instances to return (default: 25)"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Lower bound (exclusive) for an instance's end time (RFC3339 format)"),
		),
		mcp.WithString("timeMax",
			mcp.Description("Upper bound (exclusive) for an instance's start time (RFC3339 format)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone used in the response"),
		),
		mcp.WithBoolean("showDeleted",
			mcp.Description("Include cancelled instances"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token of the page to return"),
		),
		mcp.WithString("originalStart",
			mcp.Description("Original start time of the instance to return"),
		),
		mcp.WithBoolean("raw",
			mcp.Description(rawDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(instancesTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_event_instances", "events.instances", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEventInstances(ctx, request, sc)
		}))

	// Register write tools only if not in read-only mode
	if readOnly {
		return nil
	}

	quickAddTool := mcp.NewTool("calendar_quick_add_event",
		mcp.WithDescription("Create an event from a text description such as 'Lunch with Sam tomorrow at 1pm'"),
		accountOption(),
		calendarIDOption(),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text describing the event"),
		),
		sendUpdatesOption(),
	)

	s.AddTool(quickAddTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_quick_add_event", "events.quickAdd", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQuickAddEvent(ctx, request, sc)
		}))

	createEventTool := newTool("calendar_create_event",
		"Create a new calendar event (supports recurring, out-of-office, focus time and Google Meet). "+
			"Pass a full 'event' resource or the flat fields summary/start/end/...",
		[]mcp.ToolOption{
			accountOption(),
			calendarIDOption(),
			objectOption("event", "Event resource as defined by the Calendar API.", false),
		},
		eventFieldOptions(),
		writeOptions(),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_create_event", "events.insert", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	updateEventTool := newTool("calendar_update_event",
		"Replace an existing calendar event. Fields missing from 'event' are cleared.",
		[]mcp.ToolOption{
			accountOption(),
			calendarIDOption(),
			mcp.WithString("eventId",
				mcp.Required(),
				mcp.Description("The ID of the event to update"),
			),
			objectOption("event", "Complete event resource.", true),
		},
		writeOptions(),
	)

	s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_update_event", "events.update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))

	patchEventTool := newTool("calendar_patch_event",
		"Update only the given fields of an event. Pass an 'event' object with the fields to change or the flat fields.",
		[]mcp.ToolOption{
			accountOption(),
			calendarIDOption(),
			mcp.WithString("eventId",
				mcp.Required(),
				mcp.Description("The ID of the event to patch"),
			),
			objectOption("event", "Partial event resource.", false),
		},
		eventFieldOptions(),
		writeOptions(),
	)

	s.AddTool(patchEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_patch_event", "events.patch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePatchEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete one or more calendar events"),
		accountOption(),
		calendarIDOption(),
		mcp.WithAny("eventId",
			mcp.Required(),
			mcp.Description("Event ID, or an array of event IDs for a batch delete"),
		),
		sendUpdatesOption(),
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_delete_event", "events.delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	moveEventTool := mcp.NewTool("calendar_move_event",
		mcp.WithDescription("Move an event to another calendar, changing its organizer"),
		accountOption(),
		calendarIDOption(),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to move"),
		),
		mcp.WithString("destination",
			mcp.Required(),
			mcp.Description("ID of the target calendar"),
		),
		sendUpdatesOption(),
	)

	s.AddTool(moveEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_move_event", "events.move", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMoveEvent(ctx, request, sc)
		}))

	importEventTool := mcp.NewTool("calendar_import_event",
		mcp.WithDescription("Import a private copy of an existing event into a calendar. The event must carry its iCalUID."),
		accountOption(),
		calendarIDOption(),
		objectOption("event", "Event resource including iCalUID, start and end.", true),
		mcp.WithNumber("conferenceDataVersion",
			mcp.Description("Set to 1 to keep conference data"),
		),
		mcp.WithBoolean("supportsAttachments",
			mcp.Description("Whether the client supports event attachments"),
		),
	)

	s.AddTool(importEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_import_event", "events.import", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleImportEvent(ctx, request, sc)
		}))

	watchEventsTool := newTool("calendar_watch_events",
		"Open a push notification channel for changes to the events of a calendar",
		[]mcp.ToolOption{accountOption(), calendarIDOption()},
		watchToolOptions(),
		[]mcp.ToolOption{
			mcp.WithString("syncToken",
				mcp.Description("Only notify about changes after this sync token"),
			),
			mcp.WithBoolean("showDeleted",
				mcp.Description("Include cancelled events"),
			),
		},
	)

	s.AddTool(watchEventsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_watch_events", "events.watch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWatchEvents(ctx, request, sc)
		}))

	return nil
}

func handleGetTodayEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	days, err := common.Int(args, "days", 1)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxResults, err := common.Int(args, "maxResults", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := client.GetTodayEvents(ctx, common.String(args, "calendarId"), calendar.TodayEventsOptions{
		Days:       int(days),
		MaxResults: maxResults,
		TimeZone:   common.String(args, "timeZone"),
	})
	if err != nil {
		return common.ErrorResult("get events", err), nil
	}

	return mcp.NewToolResultText(summary), nil
}

func listEventsOptions(args map[string]interface{}) (calendar.ListEventsOptions, error) {
	maxResults, err := common.Int(args, "maxResults", 0)
	if err != nil {
		return calendar.ListEventsOptions{}, err
	}
	eventTypes, err := common.StringList(args, "eventTypes")
	if err != nil {
		return calendar.ListEventsOptions{}, err
	}
	private, err := common.StringList(args, "privateExtendedProperty")
	if err != nil {
		return calendar.ListEventsOptions{}, err
	}
	shared, err := common.StringList(args, "sharedExtendedProperty")
	if err != nil {
		return calendar.ListEventsOptions{}, err
	}

	return calendar.ListEventsOptions{
		MaxResults:              maxResults,
		TimeMin:                 common.String(args, "timeMin"),
		TimeMax:                 common.String(args, "timeMax"),
		Q:                       common.String(args, "query"),
		OrderBy:                 common.String(args, "orderBy"),
		SingleEvents:            common.OptionalBool(args, "singleEvents"),
		TimeZone:                common.String(args, "timeZone"),
		PageToken:               common.String(args, "pageToken"),
		ShowDeleted:             common.Bool(args, "showDeleted"),
		ShowHiddenInvitations:   common.Bool(args, "showHiddenInvitations"),
		UpdatedMin:              common.String(args, "updatedMin"),
		SyncToken:               common.String(args, "syncToken"),
		ICalUID:                 common.String(args, "iCalUID"),
		EventTypes:              eventTypes,
		PrivateExtendedProperty: private,
		SharedExtendedProperty:  shared,
	}, nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := common.String(args, "calendarId")

	opts, err := listEventsOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if common.Bool(args, "raw") {
		events, err := client.ListEventsRaw(ctx, calendarID, client.ListEventsDefaults(opts))
		if err != nil {
			return common.ErrorResult("list events", err), nil
		}
		return common.JSONResult(events)
	}

	summary, err := client.ListEvents(ctx, calendarID, opts)
	if err != nil {
		return common.ErrorResult("list events", err), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := common.String(args, "calendarId")

	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxAttendees, err := common.Int(args, "maxAttendees", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := calendar.GetEventOptions{
		MaxAttendees: maxAttendees,
		TimeZone:     common.String(args, "timeZone"),
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if common.Bool(args, "raw") {
		event, err := client.GetEventRaw(ctx, calendarID, eventID, opts)
		if err != nil {
			return common.ErrorResult("get event", err), nil
		}
		return common.JSONResult(event)
	}

	summary, err := client.GetEvent(ctx, calendarID, eventID, opts)
	if err != nil {
		return common.ErrorResult("get event", err), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func handleGetEventInstances(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := common.String(args, "calendarId")

	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxResults, err := common.Int(args, "maxResults", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := calendar.InstancesOptions{
		MaxResults:    maxResults,
		TimeMin:       common.String(args, "timeMin"),
		TimeMax:       common.String(args, "timeMax"),
		TimeZone:      common.String(args, "timeZone"),
		ShowDeleted:   common.Bool(args, "showDeleted"),
		PageToken:     common.String(args, "pageToken"),
		OriginalStart: common.String(args, "originalStart"),
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if common.Bool(args, "raw") {
		instances, err := client.GetEventInstancesRaw(ctx, calendarID, eventID, opts)
		if err != nil {
			return common.ErrorResult("get event instances", err), nil
		}
		return common.JSONResult(instances)
	}

	summary, err := client.GetEventInstances(ctx, calendarID, eventID, opts)
	if err != nil {
		return common.ErrorResult("get event instances", err), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func handleQuickAddEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	text, err := common.RequiredString(args, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updates, err := sendUpdates(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := client.QuickAddEvent(ctx, common.String(args, "calendarId"), text, updates)
	if err != nil {
		return common.ErrorResult("quick add event", err), nil
	}
	return mcp.NewToolResultText(summary), nil
}

// eventFromFields builds an event from the flat tool arguments. It returns
// nil when none of them is set.
func eventFromFields(args map[string]interface{}) (*calendarapi.Event, error) {
	start, err := common.Time(args, "start")
	if err != nil {
		return nil, err
	}
	end, err := common.Time(args, "end")
	if err != nil {
		return nil, err
	}
	attendees, err := common.StringList(args, "attendees")
	if err != nil {
		return nil, err
	}
	recurrence, err := recurrenceArg(args)
	if err != nil {
		return nil, err
	}

	in := calendar.EventInput{
		Summary:                  common.String(args, "summary"),
		Description:              common.String(args, "description"),
		Location:                 common.String(args, "location"),
		Start:                    start,
		End:                      end,
		AllDay:                   common.Bool(args, "allDay"),
		TimeZone:                 common.String(args, "timeZone"),
		Attendees:                attendees,
		Recurrence:               recurrence,
		EventType:                common.String(args, "eventType"),
		GuestsCanModify:          common.Bool(args, "guestsCanModify"),
		GuestsCanInviteOthers:    common.Bool(args, "guestsCanInviteOthers"),
		GuestsCanSeeOtherGuests:  common.Bool(args, "guestsCanSeeOtherGuests"),
		UseDefaultConferenceData: common.Bool(args, "addGoogleMeet"),
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("end must not be before start")
	}

	event := in.Event()
	// Explicit false values must reach a patch request.
	if v, ok := args["guestsCanModify"].(bool); ok {
		event.GuestsCanModify = v
		event.ForceSendFields = append(event.ForceSendFields, "GuestsCanModify")
	}
	if v, ok := args["guestsCanInviteOthers"].(bool); ok {
		event.GuestsCanInviteOthers = &v
	}
	if v, ok := args["guestsCanSeeOtherGuests"].(bool); ok {
		event.GuestsCanSeeOtherGuests = &v
	}

	if isEmptyEvent(event) {
		return nil, nil
	}
	return event, nil
}

// recurrenceArg reads recurrence rules. RRULE values contain commas, so a
// string holds one rule per line.
func recurrenceArg(args map[string]interface{}) ([]string, error) {
	if v, ok := args["recurrence"].(string); ok {
		var rules []string
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				rules = append(rules, line)
			}
		}
		return rules, nil
	}
	return common.StringList(args, "recurrence")
}

func isEmptyEvent(e *calendarapi.Event) bool {
	return e.Summary == "" && e.Description == "" && e.Location == "" && e.EventType == "" &&
		e.Start == nil && e.End == nil && len(e.Attendees) == 0 && len(e.Recurrence) == 0 &&
		!e.GuestsCanModify && e.GuestsCanInviteOthers == nil && e.GuestsCanSeeOtherGuests == nil &&
		e.ConferenceData == nil && len(e.ForceSendFields) == 0
}

// eventBoolFields maps the boolean fields of an event to their Go names.
var eventBoolFields = map[string]string{
	"anyoneCanAddSelf":        "AnyoneCanAddSelf",
	"attendeesOmitted":        "AttendeesOmitted",
	"endTimeUnspecified":      "EndTimeUnspecified",
	"guestsCanInviteOthers":   "GuestsCanInviteOthers",
	"guestsCanModify":         "GuestsCanModify",
	"guestsCanSeeOtherGuests": "GuestsCanSeeOtherGuests",
	"locked":                  "Locked",
	"privateCopy":             "PrivateCopy",
}

// eventArgument returns the "event" object with the flat fields merged on
// top. It returns nil when neither is set.
func eventArgument(args map[string]interface{}) (*calendarapi.Event, error) {
	flat, err := eventFromFields(args)
	if err != nil {
		return nil, err
	}

	var event calendarapi.Event
	ok, err := common.DecodeObject(args, "event", &event)
	if err != nil {
		return nil, err
	}
	if !ok {
		return flat, nil
	}

	event.ForceSendFields = common.PresentBoolFields(args, "event", eventBoolFields)
	if flat != nil {
		mergeEvent(&event, flat)
	}
	return &event, nil
}

// mergeEvent copies the fields set in flat over event.
func mergeEvent(event, flat *calendarapi.Event) {
	if flat.Summary != "" {
		event.Summary = flat.Summary
	}
	if flat.Description != "" {
		event.Description = flat.Description
	}
	if flat.Location != "" {
		event.Location = flat.Location
	}
	if flat.EventType != "" {
		event.EventType = flat.EventType
	}
	if flat.Start != nil {
		event.Start = flat.Start
	}
	if flat.End != nil {
		event.End = flat.End
	}
	if len(flat.Attendees) > 0 {
		event.Attendees = flat.Attendees
	}
	if len(flat.Recurrence) > 0 {
		event.Recurrence = flat.Recurrence
	}
	if flat.ConferenceData != nil {
		event.ConferenceData = flat.ConferenceData
	}
	if flat.GuestsCanModify || slices.Contains(flat.ForceSendFields, "GuestsCanModify") {
		event.GuestsCanModify = flat.GuestsCanModify
	}
	if flat.GuestsCanInviteOthers != nil {
		event.GuestsCanInviteOthers = flat.GuestsCanInviteOthers
	}
	if flat.GuestsCanSeeOtherGuests != nil {
		event.GuestsCanSeeOtherGuests = flat.GuestsCanSeeOtherGuests
	}
	for _, field := range flat.ForceSendFields {
		if !slices.Contains(event.ForceSendFields, field) {
			event.ForceSendFields = append(event.ForceSendFields, field)
		}
	}
}

func writeEventOptions(args map[string]interface{}, event *calendarapi.Event) (calendar.WriteEventOptions, error) {
	updates, err := sendUpdates(args)
	if err != nil {
		return calendar.WriteEventOptions{}, err
	}
	conferenceDataVersion, err := common.Int(args, "conferenceDataVersion", 0)
	if err != nil {
		return calendar.WriteEventOptions{}, err
	}
	if conferenceDataVersion != 0 && conferenceDataVersion != 1 {
		return calendar.WriteEventOptions{}, fmt.Errorf("conferenceDataVersion must be 0 or 1")
	}
	// A conference create request is ignored without version 1.
	if event != nil && event.ConferenceData != nil {
		conferenceDataVersion = 1
	}
	maxAttendees, err := common.Int(args, "maxAttendees", 0)
	if err != nil {
		return calendar.WriteEventOptions{}, err
	}

	return calendar.WriteEventOptions{
		SendUpdates:           updates,
		ConferenceDataVersion: conferenceDataVersion,
		MaxAttendees:          maxAttendees,
		SupportsAttachments:   common.Bool(args, "supportsAttachments"),
	}, nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	event, err := eventArgument(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if event == nil {
		return mcp.NewToolResultError("event or summary, start and end are required"), nil
	}
	opts, err := writeEventOptions(args, event)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := client.InsertEvent(ctx, common.String(args, "calendarId"), event, opts)
	if err != nil {
		return common.ErrorResult("create event", err), nil
	}
	return common.JSONResult(created)
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var event calendarapi.Event
	ok, err := common.DecodeObject(args, "event", &event)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("event is required"), nil
	}
	opts, err := writeEventOptions(args, &event)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	updated, err := client.UpdateEvent(ctx, common.String(args, "calendarId"), eventID, &event, opts)
	if err != nil {
		return common.ErrorResult("update event", err), nil
	}
	return common.JSONResult(updated)
}

func handlePatchEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	event, err := eventArgument(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if event == nil {
		return mcp.NewToolResultError("nothing to update: pass event or at least one event field"), nil
	}
	opts, err := writeEventOptions(args, event)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patched, err := client.PatchEvent(ctx, common.String(args, "calendarId"), eventID, event, opts)
	if err != nil {
		return common.ErrorResult("patch event", err), nil
	}
	return common.JSONResult(patched)
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := common.String(args, "calendarId")

	eventIDs, err := batch.ParseStringOrArray(args["eventId"], "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updates, err := sendUpdates(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(eventIDs) == 1 {
		if err := client.DeleteEvent(ctx, calendarID, eventIDs[0], updates); err != nil {
			return common.ErrorResult("delete event", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted successfully", eventIDs[0])), nil
	}

	results := batch.ProcessBatch(ctx, eventIDs, func(ctx context.Context, eventID string) (string, error) {
		if err := client.DeleteEvent(ctx, calendarID, eventID, updates); err != nil {
			return "", errors.New(common.ErrorMessage("delete event", err))
		}
		return "deleted", nil
	})

	summary := batch.Summarize(results)
	text := batch.FormatResults(results)
	if summary.Successful == 0 {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

func handleMoveEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := common.RequiredString(args, "destination")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updates, err := sendUpdates(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	moved, err := client.MoveEvent(ctx, common.String(args, "calendarId"), eventID, destination, updates)
	if err != nil {
		return common.ErrorResult("move event", err), nil
	}
	return common.JSONResult(moved)
}

func handleImportEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	var event calendarapi.Event
	ok, err := common.DecodeObject(args, "event", &event)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("event is required"), nil
	}
	opts, err := writeEventOptions(args, &event)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	imported, err := client.ImportEvent(ctx, common.String(args, "calendarId"), &event, opts)
	if err != nil {
		return common.ErrorResult("import event", err), nil
	}
	return common.JSONResult(imported)
}

func handleWatchEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	opts, err := watchOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts.SyncToken = common.String(args, "syncToken")
	opts.ShowDeleted = common.Bool(args, "showDeleted")

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	channel, err := client.WatchEvents(ctx, common.String(args, "calendarId"), opts)
	if err != nil {
		return common.ErrorResult("watch events", err), nil
	}
	return common.JSONResult(channel)
}
