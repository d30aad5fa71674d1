package utils

import (
	"fmt"
	"time"
)

// DayBounds returns the start of the day containing t and the start of the
// following day, in the given zone. All stored timestamps are UTC; this is
// the only place day boundaries are computed.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// FormatRemaining renders a countdown like "27m 14s".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// FormatLocalTime renders a stored UTC timestamp in the display timezone.
func FormatLocalTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Jan 2, 2006 3:04 PM MST")
}
