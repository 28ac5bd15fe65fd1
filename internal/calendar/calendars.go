package calendar

import (
	"context"
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
)

// GetCalendar returns the metadata of a calendar, the primary one when
// calendarID is empty.
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error) {
	cal, err := c.svc.Calendars.Get(calendarOrPrimary(calendarID)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return cal, nil
}

// InsertCalendar creates a secondary calendar.
func (c *Client) InsertCalendar(ctx context.Context, cal *calendar.Calendar) (*calendar.Calendar, error) {
	if cal == nil {
		return nil, invalidArg("calendar is required")
	}
	if err := requireArg("calendar.summary", cal.Summary); err != nil {
		return nil, err
	}

	created, err := c.svc.Calendars.Insert(cal).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}
	return created, nil
}

// UpdateCalendar replaces the metadata of a calendar.
func (c *Client) UpdateCalendar(ctx context.Context, calendarID string, cal *calendar.Calendar) (*calendar.Calendar, error) {
	if err := requireArg("calendarID", calendarID); err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, invalidArg("calendar is required")
	}

	updated, err := c.svc.Calendars.Update(calendarID, cal).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update calendar: %w", err)
	}
	return updated, nil
}

// PatchCalendar updates only the metadata fields present in cal.
func (c *Client) PatchCalendar(ctx context.Context, calendarID string, cal *calendar.Calendar) (*calendar.Calendar, error) {
	if err := requireArg("calendarID", calendarID); err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, invalidArg("calendar is required")
	}

	patched, err := c.svc.Calendars.Patch(calendarID, cal).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch calendar: %w", err)
	}
	return patched, nil
}

// DeleteCalendar deletes a secondary calendar.
func (c *Client) DeleteCalendar(ctx context.Context, calendarID string) error {
	if err := requireArg("calendarID", calendarID); err != nil {
		return err
	}

	if err := c.svc.Calendars.Delete(calendarID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}
	return nil
}

// ClearCalendar deletes all events of a primary calendar.
func (c *Client) ClearCalendar(ctx context.Context, calendarID string) error {
	if err := requireArg("calendarID", calendarID); err != nil {
		return err
	}

	if err := c.svc.Calendars.Clear(calendarID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear calendar: %w", err)
	}
	return nil
}
