package parse

import (
	"fmt"
	"strings"
	"time"

	"hostel-facilities-backend/internal/model"
)

// Accepted layouts for timestamps in requests. Layouts without an offset are
// read in the hostel's configured location.
var localLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Timestamp parses an RFC 3339 timestamp or a local wall-clock time.
func Timestamp(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// Date parses a YYYY-MM-DD day and returns its midnight in loc.
func Date(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
	}
	return t, nil
}

// ResourceType normalizes a resource type. The empty string is allowed and
// means "any type".
func ResourceType(raw string) (model.ResourceType, error) {
	t := model.ResourceType(strings.ToUpper(strings.TrimSpace(raw)))
	if t == "" || t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown resource type %q", raw)
}
