package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Display constants shared by every formatter.
const (
	// TruncateLength is the number of runes kept from long free-text fields.
	TruncateLength = 100
	// Ellipsis marks a truncated field.
	Ellipsis = "..."

	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006, 15:04:05"

	PlaceholderDescription = "No description"
	PlaceholderUnknown     = "N/A"
	PlaceholderNone        = "None"
	PlaceholderBot         = "Bot"
	UnknownListName        = "Unknown list"
)

// Truncate shortens s to TruncateLength runes and appends Ellipsis.
// Strings at or under the limit are returned unchanged.
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= TruncateLength {
		return s
	}
	return string(runes[:TruncateLength]) + Ellipsis
}

// FormatDate renders an ISO 8601 timestamp as a day-first date in loc.
// Unparseable input is returned as-is.
func FormatDate(iso string, loc *time.Location) string {
	t, ok := parseISO(iso)
	if !ok {
		return iso
	}
	return t.In(location(loc)).Format(DateLayout)
}

// FormatDateTime renders an ISO 8601 timestamp as a day-first date and time in loc.
func FormatDateTime(iso string, loc *time.Location) string {
	t, ok := parseISO(iso)
	if !ok {
		return iso
	}
	return t.In(location(loc)).Format(DateTimeLayout)
}

// FormatEpoch renders a Slack timestamp ("1700000000.000100") as a date and time in loc.
func FormatEpoch(ts string, loc *time.Location) string {
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return ts
	}
	t := time.UnixMilli(int64(seconds * 1000))
	return t.In(location(loc)).Format(DateTimeLayout)
}

// ParseTimestamp parses an ISO 8601 timestamp as returned by the services.
func ParseTimestamp(iso string) (time.Time, bool) {
	return parseISO(iso)
}

func parseISO(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// firstLine returns the subject line of a commit message.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// progressBar renders percent (0-100) as ten cells of █ and ░.
func progressBar(percent float64) string {
	filled := int(percent / 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
