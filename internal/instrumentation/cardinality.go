package instrumentation

import "strings"

// Metric labels must not carry calendar or event IDs. The helpers below map
// request paths onto a small fixed set of values.

// Calendar API resources.
const (
	ResourceEvents       = "events"
	ResourceCalendars    = "calendars"
	ResourceCalendarList = "calendarList"
	ResourceACL          = "acl"
	ResourceSettings     = "settings"
	ResourceColors       = "colors"
	ResourceFreeBusy     = "freebusy"
	ResourceChannels     = "channels"
	ResourceUnknown      = "unknown"
)

// Calendar API operations.
const (
	OperationList      = "list"
	OperationGet       = "get"
	OperationInsert    = "insert"
	OperationUpdate    = "update"
	OperationPatch     = "patch"
	OperationDelete    = "delete"
	OperationMove      = "move"
	OperationImport    = "import"
	OperationQuickAdd  = "quickAdd"
	OperationInstances = "instances"
	OperationWatch     = "watch"
	OperationStop      = "stop"
	OperationClear     = "clear"
	OperationQuery     = "query"
	OperationUnknown   = "unknown"
)

const calendarPathPrefix = "/calendar/v3/"

var calendarCollections = map[string]string{
	"calendars":    ResourceCalendars,
	"events":       ResourceEvents,
	"acl":          ResourceACL,
	"calendarList": ResourceCalendarList,
	"settings":     ResourceSettings,
}

var calendarActions = map[string]string{
	"clear":     OperationClear,
	"quickAdd":  OperationQuickAdd,
	"import":    OperationImport,
	"watch":     OperationWatch,
	"move":      OperationMove,
	"instances": OperationInstances,
}

// ClassifyCalendarRequest maps a Calendar API request onto a resource and
// an operation. The path should be the escaped URL path so that IDs
// containing slashes stay in one segment.
//
// Example:
//
//	ClassifyCalendarRequest("POST", "/calendar/v3/calendars/primary/events/quickAdd")
//	// "events", "quickAdd"
func ClassifyCalendarRequest(method, path string) (resource, operation string) {
	if i := strings.Index(path, calendarPathPrefix); i >= 0 {
		path = path[i+len(calendarPathPrefix):]
	}
	segs := strings.Split(strings.Trim(path, "/"), "/")

	switch segs[0] {
	case "colors":
		return ResourceColors, OperationGet
	case "freeBusy":
		return ResourceFreeBusy, OperationQuery
	case "channels":
		return ResourceChannels, OperationStop
	}

	resource = ResourceUnknown
	collection := -1
	for i, seg := range segs {
		if r, ok := calendarCollections[seg]; ok {
			resource = r
			collection = i
		}
	}
	if collection < 0 {
		return ResourceUnknown, OperationUnknown
	}

	last := len(segs) - 1
	if op, ok := calendarActions[segs[last]]; ok && last > collection {
		return resource, op
	}

	hasID := last > collection
	switch strings.ToUpper(method) {
	case "GET":
		if hasID {
			return resource, OperationGet
		}
		return resource, OperationList
	case "POST":
		return resource, OperationInsert
	case "PUT":
		return resource, OperationUpdate
	case "PATCH":
		return resource, OperationPatch
	case "DELETE":
		return resource, OperationDelete
	}
	return resource, OperationUnknown
}

// NormalizeHTTPPath reduces inbound request paths to the routes the server
// actually serves.
func NormalizeHTTPPath(path string) string {
	switch path {
	case "/mcp", "/healthz", "/readyz", "/metrics":
		return path
	}
	if strings.HasPrefix(path, "/mcp/") {
		return "/mcp"
	}
	return "other"
}

// ExtractUserDomain extracts the domain part from an email address.
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
func ExtractUserDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return "unknown"
}
