package clock

import (
	"fmt"
	"strings"
	"time"
)

// accepted layouts for user supplied dates, most specific first
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Now returns the current UTC time truncated to microseconds, the finest
// precision every supported store keeps
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Parse reads a session date in one of the accepted layouts; an empty
// value yields nil. Values without a zone are treated as UTC.
func Parse(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("not a valid date: %s", value)
}
