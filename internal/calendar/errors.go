package calendar

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrInvalidArgument is wrapped by every error caused by a missing or
// malformed parameter. No request is sent when it is returned.
var ErrInvalidArgument = errors.New("invalid argument")

func requireArg(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	return nil
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// APIStatus returns the HTTP status code of a failed API call, or 0 when err
// did not come from the Calendar API.
func APIStatus(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

// APIMessage returns the message reported by the Calendar API for a failed
// call, or an empty string.
func APIMessage(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the Calendar API.
func IsNotFound(err error) bool {
	return APIStatus(err) == http.StatusNotFound
}
