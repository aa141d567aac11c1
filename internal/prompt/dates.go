package prompt

import "time"

// dayFormat renders the month name and the day-of-month with no leading zero.
const dayFormat = "January 2"

// FormatDay renders a date the way prompts expect it, e.g. "July 5".
func FormatDay(t time.Time) string {
	return t.Format(dayFormat)
}

// UpcomingSunday returns the next Sunday on or after t. If t already falls on
// a Sunday it is returned unchanged, so a report drafted on Sunday covers the
// week beginning that same day.
func UpcomingSunday(t time.Time) time.Time {
	days := (7 - int(t.Weekday())) % 7
	return t.AddDate(0, 0, days)
}

// MonthName renders the month of t, e.g. "January".
func MonthName(t time.Time) string {
	return t.Format("January")
}
