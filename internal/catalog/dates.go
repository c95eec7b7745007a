package catalog

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for event dates and query bounds.
const DateLayout = "2006-01-02"

// defaultWindowDays is how far back an open-ended query starts.
const defaultWindowDays = 30

// ValidDate reports whether s is a real calendar date written as YYYY-MM-DD.
func ValidDate(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// defaultWindow returns [today-30d, today] for the given instant, in UTC to
// match the feed's timestamps.
func defaultWindow(now time.Time) (start, end string) {
	today := now.UTC()
	return today.AddDate(0, 0, -defaultWindowDays).Format(DateLayout), today.Format(DateLayout)
}
