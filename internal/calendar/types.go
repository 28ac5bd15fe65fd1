package calendar

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Values accepted by the sendUpdates parameter of event write calls.
const (
	SendUpdatesAll          = "all"
	SendUpdatesExternalOnly = "externalOnly"
	SendUpdatesNone         = "none"
)

// TodayEventsOptions configures GetTodayEvents.
type TodayEventsOptions struct {
	Days       int // 1 means today only
	MaxResults int64
	TimeZone   string
}

// ListEventsOptions configures events.list. Zero values are not sent.
type ListEventsOptions struct {
	MaxResults   int64
	TimeMin      string
	TimeMax      string
	Q            string
	OrderBy      string // "startTime" or "updated"
	SingleEvents *bool
	TimeZone     string
	PageToken    string

	ShowDeleted             bool
	ShowHiddenInvitations   bool
	UpdatedMin              string
	SyncToken               string
	ICalUID                 string
	EventTypes              []string
	PrivateExtendedProperty []string // propertyName=value
	SharedExtendedProperty  []string // propertyName=value
	MaxAttendees            int64
	AlwaysIncludeEmail      bool
}

// GetEventOptions configures events.get.
type GetEventOptions struct {
	MaxAttendees int64
	TimeZone     string
}

// InstancesOptions configures events.instances.
type InstancesOptions struct {
	MaxResults    int64
	TimeMin       string
	TimeMax       string
	TimeZone      string
	ShowDeleted   bool
	PageToken     string
	OriginalStart string
}

// WriteEventOptions configures events.insert, update, patch and import.
type WriteEventOptions struct {
	SendUpdates           string
	ConferenceDataVersion int64 // 0 or 1
	MaxAttendees          int64
	SupportsAttachments   bool
}

// WatchOptions describes the notification channel for a watch call.
type WatchOptions struct {
	ID         string // generated when empty
	Address    string
	Token      string
	Type       string // defaults to "web_hook"
	TTLSeconds int64
	Expiration int64 // milliseconds since the epoch

	SyncToken   string
	ShowDeleted bool
}

// CalendarListOptions configures calendarList.list and calendarList.watch.
type CalendarListOptions struct {
	MaxResults    int64
	MinAccessRole string // "freeBusyReader", "owner", "reader" or "writer"
	PageToken     string
	ShowDeleted   bool
	ShowHidden    bool
	SyncToken     string
}

// AclListOptions configures acl.list.
type AclListOptions struct {
	MaxResults  int64
	PageToken   string
	ShowDeleted bool
	SyncToken   string
}

// AclWriteOptions configures acl.insert, update and patch.
type AclWriteOptions struct {
	SendNotifications *bool
}

// SettingsListOptions configures settings.list.
type SettingsListOptions struct {
	MaxResults int64
	PageToken  string
	SyncToken  string
}

// FreeBusyOptions is the body of a freeBusy query.
type FreeBusyOptions struct {
	TimeMin              string
	TimeMax              string
	Items                []string // calendar or group IDs
	TimeZone             string
	GroupExpansionMax    int64
	CalendarExpansionMax int64
}

// EventInput holds the common fields of an event in flat form.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	TimeZone    string
	Attendees   []string
	Recurrence  []string // RRULE, EXRULE, RDATE, EXDATE

	// Event type: "default", "outOfOffice", "focusTime", "workingLocation"
	EventType string

	GuestsCanModify         bool
	GuestsCanInviteOthers   bool
	GuestsCanSeeOtherGuests bool

	// Automatically add Google Meet
	UseDefaultConferenceData bool
}

// Event converts the flat input into an API event. Fields left at their
// zero value are omitted so the result can also be used as a patch body.
func (in EventInput) Event() *calendar.Event {
	event := &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		EventType:   in.EventType,
		Recurrence:  in.Recurrence,
	}

	event.Start = eventDateTime(in.Start, in.AllDay, in.TimeZone)
	event.End = eventDateTime(in.End, in.AllDay, in.TimeZone)

	for _, email := range in.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	event.GuestsCanModify = in.GuestsCanModify
	if in.GuestsCanInviteOthers {
		event.GuestsCanInviteOthers = boolPtr(true)
	}
	if in.GuestsCanSeeOtherGuests {
		event.GuestsCanSeeOtherGuests = boolPtr(true)
	}

	if in.UseDefaultConferenceData {
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: fmt.Sprintf("meet-%d", time.Now().UnixNano()),
			},
		}
	}

	return event
}

func eventDateTime(t time.Time, allDay bool, tz string) *calendar.EventDateTime {
	if t.IsZero() {
		return nil
	}
	if allDay {
		return &calendar.EventDateTime{Date: t.Format(time.DateOnly)}
	}
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: tz,
	}
}

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
	AccessRole  string `json:"accessRole"` // "owner", "writer", "reader", "freeBusyReader"
}

// FreeBusyInfo represents availability information for a calendar
type FreeBusyInfo struct {
	Calendar string
	Busy     []TimeRange
	Errors   []string
}

// TimeRange represents a time range
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// AvailableSlot represents an available time slot for scheduling
type AvailableSlot struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// ToCalendarInfo converts a Google Calendar list entry to CalendarInfo
func ToCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}

func boolPtr(b bool) *bool {
	return &b
}
