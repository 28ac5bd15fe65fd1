// Package calendar adapts the Google Calendar v3 REST API.
//
// Every Client method maps onto exactly one v3 endpoint (events, calendars,
// calendarList, acl, freeBusy, colors, settings, channels). Methods either
// return the typed API response unchanged or render it as a short text
// summary meant for humans and language models.
//
// Required parameters are checked before any request is sent; a missing one
// produces an error wrapping ErrInvalidArgument. Non-2xx responses surface as
// *googleapi.Error, wrapped with the name of the failed operation.
//
// Example usage:
//
//	client, err := calendar.NewClientForAccountWithProvider(ctx, "default", google.NewFileTokenProvider())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Agenda for the next three days
//	text, err := client.GetTodayEvents(ctx, "primary", calendar.TodayEventsOptions{Days: 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
