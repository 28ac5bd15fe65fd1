package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcal-mcp/internal/logging"
)

// GetTodayEvents summarizes the events between today 00:00 UTC and the same
// time opts.Days days later.
func (c *Client) GetTodayEvents(ctx context.Context, calendarID string, opts TodayEventsOptions) (string, error) {
	days := opts.Days
	if days == 0 {
		days = 1
	}
	if days < 0 {
		return "", invalidArg("days must be positive, got %d", days)
	}

	now := c.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, days)

	call := c.svc.Events.List(calendarOrPrimary(calendarID)).
		TimeMin(today.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.TimeZone != "" {
		call = call.TimeZone(opts.TimeZone)
	}

	slog.Debug("retrieving calendar events", logging.Operation("events.list"), "range", dateRangeLabel(days))
	events, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to list events: %w", err)
	}

	return formatTodayEvents(events.Items, days), nil
}

// GetEvent summarizes a single event including its attendees.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string, opts GetEventOptions) (string, error) {
	event, err := c.GetEventRaw(ctx, calendarID, eventID, opts)
	if err != nil {
		return "", err
	}
	return formatEvent(eventID, event), nil
}

// GetEventRaw retrieves a specific event by ID
func (c *Client) GetEventRaw(ctx context.Context, calendarID, eventID string, opts GetEventOptions) (*calendar.Event, error) {
	if err := requireArg("eventID", eventID); err != nil {
		return nil, err
	}

	call := c.svc.Events.Get(calendarOrPrimary(calendarID), eventID).Context(ctx)
	if opts.MaxAttendees > 0 {
		call = call.MaxAttendees(opts.MaxAttendees)
	}
	if opts.TimeZone != "" {
		call = call.TimeZone(opts.TimeZone)
	}

	event, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListEvents summarizes the events selected by opts after
// ListEventsDefaults has filled in the unset options.
func (c *Client) ListEvents(ctx context.Context, calendarID string, opts ListEventsOptions) (string, error) {
	events, err := c.ListEventsRaw(ctx, calendarID, c.ListEventsDefaults(opts))
	if err != nil {
		return "", err
	}
	return formatEventList(events), nil
}

// ListEventsDefaults fills unset options: ten expanded events ordered by
// start time, starting now. With a sync token only the page size and
// expansion are filled, since events.list rejects a sync token combined
// with a time bound or an order. Ordering by start time needs expanded
// events, so it is only added when singleEvents is true.
func (c *Client) ListEventsDefaults(opts ListEventsOptions) ListEventsOptions {
	if opts.MaxResults == 0 {
		opts.MaxResults = 10
	}
	if opts.SingleEvents == nil {
		opts.SingleEvents = boolPtr(true)
	}
	if opts.SyncToken != "" {
		return opts
	}
	if opts.OrderBy == "" && *opts.SingleEvents {
		opts.OrderBy = "startTime"
	}
	if opts.TimeMin == "" {
		opts.TimeMin = c.now().UTC().Format(time.RFC3339)
	}
	return opts
}

// ListEventsRaw calls events.list with exactly the supplied options.
func (c *Client) ListEventsRaw(ctx context.Context, calendarID string, opts ListEventsOptions) (*calendar.Events, error) {
	call := c.svc.Events.List(calendarOrPrimary(calendarID)).Context(ctx)

	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.TimeMin != "" {
		call = call.TimeMin(opts.TimeMin)
	}
	if opts.TimeMax != "" {
		call = call.TimeMax(opts.TimeMax)
	}
	if opts.Q != "" {
		call = call.Q(opts.Q)
	}
	if opts.OrderBy != "" {
		call = call.OrderBy(opts.OrderBy)
	}
	if opts.SingleEvents != nil {
		call = call.SingleEvents(*opts.SingleEvents)
	}
	if opts.TimeZone != "" {
		call = call.TimeZone(opts.TimeZone)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.ShowDeleted {
		call = call.ShowDeleted(true)
	}
	if opts.ShowHiddenInvitations {
		call = call.ShowHiddenInvitations(true)
	}
	if opts.UpdatedMin != "" {
		call = call.UpdatedMin(opts.UpdatedMin)
	}
	if opts.SyncToken != "" {
		call = call.SyncToken(opts.SyncToken)
	}
	if opts.ICalUID != "" {
		call = call.ICalUID(opts.ICalUID)
	}
	if len(opts.EventTypes) > 0 {
		call = call.EventTypes(opts.EventTypes...)
	}
	if len(opts.PrivateExtendedProperty) > 0 {
		call = call.PrivateExtendedProperty(opts.PrivateExtendedProperty...)
	}
	if len(opts.SharedExtendedProperty) > 0 {
		call = call.SharedExtendedProperty(opts.SharedExtendedProperty...)
	}
	if opts.MaxAttendees > 0 {
		call = call.MaxAttendees(opts.MaxAttendees)
	}
	if opts.AlwaysIncludeEmail {
		call = call.AlwaysIncludeEmail(true)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// QuickAddEvent creates an event from a natural language description such
// as "Lunch with Sam tomorrow 1pm".
func (c *Client) QuickAddEvent(ctx context.Context, calendarID, text, sendUpdates string) (string, error) {
	if err := requireArg("text", text); err != nil {
		return "", err
	}
	if sendUpdates == "" {
		sendUpdates = SendUpdatesNone
	}

	event, err := c.svc.Events.QuickAdd(calendarOrPrimary(calendarID), text).
		SendUpdates(sendUpdates).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to quick add event: %w", err)
	}
	return formatQuickAdd(event), nil
}

// GetEventInstances summarizes the occurrences of a recurring event.
func (c *Client) GetEventInstances(ctx context.Context, calendarID, eventID string, opts InstancesOptions) (string, error) {
	if opts.MaxResults == 0 {
		opts.MaxResults = 25
	}

	instances, err := c.GetEventInstancesRaw(ctx, calendarID, eventID, opts)
	if err != nil {
		return "", err
	}
	return formatInstances(eventID, instances), nil
}

// GetEventInstancesRaw calls events.instances with exactly the supplied options.
func (c *Client) GetEventInstancesRaw(ctx context.Context, calendarID, eventID string, opts InstancesOptions) (*calendar.Events, error) {
	if err := requireArg("eventID", eventID); err != nil {
		return nil, err
	}

	call := c.svc.Events.Instances(calendarOrPrimary(calendarID), eventID).
		ShowDeleted(opts.ShowDeleted).
		Context(ctx)
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.TimeMin != "" {
		call = call.TimeMin(opts.TimeMin)
	}
	if opts.TimeMax != "" {
		call = call.TimeMax(opts.TimeMax)
	}
	if opts.TimeZone != "" {
		call = call.TimeZone(opts.TimeZone)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.OriginalStart != "" {
		call = call.OriginalStart(opts.OriginalStart)
	}

	instances, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event instances: %w", err)
	}
	return instances, nil
}

// InsertEvent creates a new calendar event
func (c *Client) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event, opts WriteEventOptions) (*calendar.Event, error) {
	if err := requireTimedEvent(event); err != nil {
		return nil, err
	}

	call := c.svc.Events.Insert(calendarOrPrimary(calendarID), event).Context(ctx)
	if opts.SendUpdates != "" {
		call = call.SendUpdates(opts.SendUpdates)
	}
	if opts.ConferenceDataVersion > 0 {
		call = call.ConferenceDataVersion(opts.ConferenceDataVersion)
	}
	if opts.MaxAttendees > 0 {
		call = call.MaxAttendees(opts.MaxAttendees)
	}
	if opts.SupportsAttachments {
		call = call.SupportsAttachments(true)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// UpdateEvent replaces an existing event. Fields missing from event are
// cleared on the server.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event, opts WriteEventOptions) (*calendar.Event, error) {
	if err := requireArg("eventID", eventID); err != nil {
		return nil, err
	}
	if err := requireTimedEvent(event); err != nil {
		return nil, err
	}

	call := c.svc.Events.Update(calendarOrPrimary(calendarID), eventID, event).Context(ctx)
	if opts.SendUpdates != "" {
		call = call.SendUpdates(opts.SendUpdates)
	}
	if opts.ConferenceDataVersion > 0 {
		call = call.ConferenceDataVersion(opts.ConferenceDataVersion)
	}
	if opts.MaxAttendees > 0 {
		call = call.MaxAttendees(opts.MaxAttendees)
	}
	if opts.SupportsAttachments {
		call = call.SupportsAttachments(true)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return updated, nil
}

// PatchEvent updates only the fields present in event.
func (c *Client) PatchEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event, opts WriteEventOptions) (*calendar.Event, error) {
	if err := requireArg("eventID", eventID); err != nil {
		return nil, err
	}
	if event == nil {
		return nil, invalidArg("event is required")
	}

	call := c.svc.Events.Patch(calendarOrPrimary(calendarID), eventID, event).Context(ctx)
	if opts.SendUpdates != "" {
		call = call.SendUpdates(opts.SendUpdates)
	}
	if opts.ConferenceDataVersion > 0 {
		call = call.ConferenceDataVersion(opts.ConferenceDataVersion)
	}
	if opts.MaxAttendees > 0 {
		call = call.MaxAttendees(opts.MaxAttendees)
	}
	if opts.SupportsAttachments {
		call = call.SupportsAttachments(true)
	}

	patched, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch event: %w", err)
	}
	return patched, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID, sendUpdates string) error {
	if err := requireArg("eventID", eventID); err != nil {
		return err
	}

	call := c.svc.Events.Delete(calendarOrPrimary(calendarID), eventID).Context(ctx)
	if sendUpdates != "" {
		call = call.SendUpdates(sendUpdates)
	}

	if err := call.Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// MoveEvent changes the organizer calendar of an event.
func (c *Client) MoveEvent(ctx context.Context, calendarID, eventID, destination, sendUpdates string) (*calendar.Event, error) {
	if err := requireArg("eventID", eventID); err != nil {
		return nil, err
	}
	if err := requireArg("destination", destination); err != nil {
		return nil, err
	}

	call := c.svc.Events.Move(calendarOrPrimary(calendarID), eventID, destination).Context(ctx)
	if sendUpdates != "" {
		call = call.SendUpdates(sendUpdates)
	}

	moved, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to move event: %w", err)
	}
	return moved, nil
}

// ImportEvent adds a private copy of an existing event, identified by its
// iCalUID, to a calendar.
func (c *Client) ImportEvent(ctx context.Context, calendarID string, event *calendar.Event, opts WriteEventOptions) (*calendar.Event, error) {
	if err := requireTimedEvent(event); err != nil {
		return nil, err
	}
	if err := requireArg("event.iCalUID", event.ICalUID); err != nil {
		return nil, err
	}

	call := c.svc.Events.Import(calendarOrPrimary(calendarID), event).Context(ctx)
	if opts.ConferenceDataVersion > 0 {
		call = call.ConferenceDataVersion(opts.ConferenceDataVersion)
	}
	if opts.SupportsAttachments {
		call = call.SupportsAttachments(true)
	}

	imported, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to import event: %w", err)
	}
	return imported, nil
}

// WatchEvents opens a push notification channel for changes to events.
func (c *Client) WatchEvents(ctx context.Context, calendarID string, opts WatchOptions) (*calendar.Channel, error) {
	channel, err := opts.channel()
	if err != nil {
		return nil, err
	}

	call := c.svc.Events.Watch(calendarOrPrimary(calendarID), channel).Context(ctx)
	if opts.SyncToken != "" {
		call = call.SyncToken(opts.SyncToken)
	}
	if opts.ShowDeleted {
		call = call.ShowDeleted(true)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to watch events: %w", err)
	}
	return created, nil
}

func requireTimedEvent(event *calendar.Event) error {
	if event == nil {
		return invalidArg("event is required")
	}
	if event.Start == nil || (event.Start.Date == "" && event.Start.DateTime == "") {
		return invalidArg("event.start is required")
	}
	if event.End == nil || (event.End.Date == "" && event.End.DateTime == "") {
		return invalidArg("event.end is required")
	}
	return nil
}
