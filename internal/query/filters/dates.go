package filters

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order; layouts without a zone are read in the
// caller's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads a backend date or timestamp. Zoned timestamps are
// converted into loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// LocalDay truncates a date or timestamp to midnight of its calendar day in
// loc. Comparing days instead of instants keeps 23:30 local from landing on
// the next day just because it is already tomorrow in UTC.
func LocalDay(value string, loc *time.Location) (time.Time, bool) {
	t, ok := ParseTimestamp(value, loc)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), true
}
