package calendar

import (
	"context"
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
)

// ListCalendarList returns one page of the user's calendar list.
func (c *Client) ListCalendarList(ctx context.Context, opts CalendarListOptions) (*calendar.CalendarList, error) {
	call := c.svc.CalendarList.List().Context(ctx)
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.MinAccessRole != "" {
		call = call.MinAccessRole(opts.MinAccessRole)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.ShowDeleted {
		call = call.ShowDeleted(true)
	}
	if opts.ShowHidden {
		call = call.ShowHidden(true)
	}
	if opts.SyncToken != "" {
		call = call.SyncToken(opts.SyncToken)
	}

	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return list, nil
}

// ListCalendars lists the first page of calendars accessible to the user in
// simplified form.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	list, err := c.ListCalendarList(ctx, CalendarListOptions{})
	if err != nil {
		return nil, err
	}

	calendars := make([]CalendarInfo, 0, len(list.Items))
	for _, entry := range list.Items {
		calendars = append(calendars, ToCalendarInfo(entry))
	}
	return calendars, nil
}

// GetCalendarListEntry returns a calendar from the user's calendar list,
// the primary one when calendarID is empty.
func (c *Client) GetCalendarListEntry(ctx context.Context, calendarID string) (*calendar.CalendarListEntry, error) {
	entry, err := c.svc.CalendarList.Get(calendarOrPrimary(calendarID)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar list entry: %w", err)
	}
	return entry, nil
}

// InsertCalendarListEntry subscribes the user to an existing calendar.
func (c *Client) InsertCalendarListEntry(ctx context.Context, entry *calendar.CalendarListEntry, colorRgbFormat bool) (*calendar.CalendarListEntry, error) {
	if entry == nil {
		return nil, invalidArg("entry is required")
	}
	if err := requireArg("entry.id", entry.Id); err != nil {
		return nil, err
	}

	call := c.svc.CalendarList.Insert(entry).Context(ctx)
	if colorRgbFormat {
		call = call.ColorRgbFormat(true)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert calendar list entry: %w", err)
	}
	return created, nil
}

// UpdateCalendarListEntry replaces the user's settings for a calendar.
func (c *Client) UpdateCalendarListEntry(ctx context.Context, calendarID string, entry *calendar.CalendarListEntry, colorRgbFormat bool) (*calendar.CalendarListEntry, error) {
	if err := requireArg("calendarID", calendarID); err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, invalidArg("entry is required")
	}

	call := c.svc.CalendarList.Update(calendarID, entry).Context(ctx)
	if colorRgbFormat {
		call = call.ColorRgbFormat(true)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update calendar list entry: %w", err)
	}
	return updated, nil
}

// PatchCalendarListEntry updates only the settings present in entry.
func (c *Client) PatchCalendarListEntry(ctx context.Context, calendarID string, entry *calendar.CalendarListEntry, colorRgbFormat bool) (*calendar.CalendarListEntry, error) {
	if err := requireArg("calendarID", calendarID); err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, invalidArg("entry is required")
	}

	call := c.svc.CalendarList.Patch(calendarID, entry).Context(ctx)
	if colorRgbFormat {
		call = call.ColorRgbFormat(true)
	}

	patched, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch calendar list entry: %w", err)
	}
	return patched, nil
}

// DeleteCalendarListEntry unsubscribes the user from a calendar.
func (c *Client) DeleteCalendarListEntry(ctx context.Context, calendarID string) error {
	if err := requireArg("calendarID", calendarID); err != nil {
		return err
	}

	if err := c.svc.CalendarList.Delete(calendarID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar list entry: %w", err)
	}
	return nil
}

// WatchCalendarList opens a push notification channel for changes to the
// user's calendar list.
func (c *Client) WatchCalendarList(ctx context.Context, opts WatchOptions) (*calendar.Channel, error) {
	channel, err := opts.channel()
	if err != nil {
		return nil, err
	}

	call := c.svc.CalendarList.Watch(channel).Context(ctx)
	if opts.SyncToken != "" {
		call = call.SyncToken(opts.SyncToken)
	}
	if opts.ShowDeleted {
		call = call.ShowDeleted(true)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to watch calendar list: %w", err)
	}
	return created, nil
}
