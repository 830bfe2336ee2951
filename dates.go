package s3load

import (
	"regexp"
	"strconv"
	"time"
)

var (
	// eg 2019-01-01_hello-world.md or 2019-01-01-10-30-59_hello-world.md
	dateInName = regexp.MustCompile(`^(\d{4})-(\d\d)-(\d\d)(?:-(\d\d)-(\d\d)(?:-(\d\d))?)?_`)

	// eg 001_intro.md
	orderInName = regexp.MustCompile(`^(\d+)_`)
)

// Date layouts accepted for string valued dates in page data.  Both are read as UTC.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// Detects a date (or an ordering number) at the start of a file name.  prefix is
// the matched text including the trailing "_" so callers can strip it.
//
// Dates are read as UTC.  An ordering number N becomes the instant N milliseconds
// after the unix epoch which keeps pages sortable by their number.
func DateFromName(name string) (prefix string, date time.Time, found bool) {
	if m := dateInName.FindStringSubmatch(name); m != nil {
		parts := make([]int, 6)
		for i, s := range m[1:] {
			if s != "" {
				parts[i], _ = strconv.Atoi(s)
			}
		}
		date = time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC)
		return m[0], date, true
	}

	if m := orderInName.FindStringSubmatch(name); m != nil {
		order, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			// too many digits to be an order or a timestamp
			return "", time.Time{}, false
		}
		return m[0], time.UnixMilli(order).UTC(), true
	}
	return "", time.Time{}, false
}

// Converts a date value found in page data into a time.  Accepts time values and
// strings in one of the DateLayouts.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	case string:
		for _, layout := range DateLayouts {
			if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Tells whether a date field counts as not set.  Like a falsy check: nil, "",
// zero times, false and 0 are all unset.
func dateUnset(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case time.Time:
		return v.IsZero()
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case uint64:
		return v == 0
	case float64:
		return v == 0
	}
	return false
}
