package common

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// String returns a trimmed string argument, or "" when it is absent.
func String(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// StringOr returns a string argument or def when it is absent or empty.
func StringOr(args map[string]interface{}, key, def string) string {
	if v := String(args, key); v != "" {
		return v
	}
	return def
}

// RequiredString returns a non-empty string argument.
func RequiredString(args map[string]interface{}, key string) (string, error) {
	v := String(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// Bool returns a boolean argument. Strings such as "true" are accepted.
func Bool(args map[string]interface{}, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// OptionalBool returns nil when the argument is absent.
func OptionalBool(args map[string]interface{}, key string) *bool {
	if _, ok := args[key]; !ok {
		return nil
	}
	b := Bool(args, key)
	return &b
}

// Int returns an integer argument or def. JSON numbers arrive as float64.
func Int(args map[string]interface{}, key string, def int64) (int64, error) {
	switch v := args[key].(type) {
	case nil:
		return def, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		if v == "" {
			return def, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

// StringList accepts an array of strings or a comma-separated string.
func StringList(args map[string]interface{}, key string) ([]string, error) {
	var raw []string
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", key, i)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", key)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// Time parses an RFC 3339 argument. A bare date is read as midnight UTC.
func Time(args map[string]interface{}, key string) (time.Time, error) {
	s := String(args, key)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid %s %q: expected RFC 3339 (e.g. 2025-01-15T14:00:00Z) or YYYY-MM-DD", key, s)
}

// DecodeObject decodes an argument that holds a JSON object, given either
// as an object or as a string containing one, into target. It reports
// whether the argument was present.
func DecodeObject(args map[string]interface{}, key string, target any) (bool, error) {
	var data []byte
	switch v := args[key].(type) {
	case nil:
		return false, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return false, nil
		}
		data = []byte(v)
	case map[string]interface{}:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("invalid %s: %w", key, err)
		}
	default:
		return true, fmt.Errorf("%s must be a JSON object", key)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return true, fmt.Errorf("invalid %s: %w", key, err)
	}
	return true, nil
}

// PresentBoolFields returns the Go names of the boolean fields set in the
// object under key. fields maps JSON names to Go names. The result is meant
// for ForceSendFields, so an explicit false survives omitempty.
func PresentBoolFields(args map[string]interface{}, key string, fields map[string]string) []string {
	var object map[string]interface{}
	if ok, err := DecodeObject(args, key, &object); !ok || err != nil {
		return nil
	}

	var present []string
	for jsonName, goName := range fields {
		if _, ok := object[jsonName].(bool); ok {
			present = append(present, goName)
		}
	}
	sort.Strings(present)
	return present
}
