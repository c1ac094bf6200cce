package utils // date codec for backing-store and event timestamps

import (
	"strings"
	"time"
)

// The record store serializes timestamps as "YYYY-MM-DD HH:MM:SS.sss" with
// a space separator instead of RFC 3339's "T".  Parsing substitutes the
// "T" back in; formatting reverses it.  All values are UTC.
const storeDateLayout = "2006-01-02T15:04:05.000Z"

// ParseStoreDate parses a store-format timestamp.  Timestamps without a
// fractional second part are accepted too.
func ParseStoreDate(s string) (time.Time, error) {
	iso := strings.Replace(strings.TrimSpace(s), " ", "T", 1)
	t, err := time.Parse(storeDateLayout, iso)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05Z", iso)
}

// FormatStoreDate serializes a timestamp into store format.
func FormatStoreDate(t time.Time) string {
	return strings.Replace(t.UTC().Format(storeDateLayout), "T", " ", 1)
}
