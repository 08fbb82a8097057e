package canonical

import (
	"net/mail"
	"strings"
	"time"

	"tarmac.news/avdigest/internal/globaltime"
)

// UnparsableFallback is what ParseTime returns for garbage timestamps.
// Falling back to the epoch keeps stale items from masquerading as fresh.
var UnparsableFallback = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

var timeLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 -0700",
	"Mon, 02 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp formats seen across feed sources into UTC.
// An empty value yields the current time; an unparsable one yields the epoch.
func ParseTime(value string) time.Time {
	text := strings.TrimSpace(value)
	if text == "" {
		return globaltime.UTC()
	}

	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts.UTC()
		}
	}

	if ts, err := mail.ParseDate(text); err == nil {
		return ts.UTC()
	}

	if ts, err := time.Parse(time.RFC3339, strings.Replace(text, "Z", "+00:00", 1)); err == nil {
		return ts.UTC()
	}

	return UnparsableFallback
}

// UTCISO formats t as an ISO-8601 UTC timestamp with an explicit offset.
// The string form sorts chronologically, which the dedup ordering relies on.
func UTCISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05-07:00")
}
