package program

import (
	"fmt"
	"time"
)

const (
	longDateLayout = "Monday, January 2, 2006"
	dayDateLayout  = "01/02/2006"
)

// DayDate returns the calendar date of a conference day, counted from the
// start date in the event zone. Day 1 is the start date.
func DayDate(start time.Time, day int) time.Time {
	if start.IsZero() {
		return time.Time{}
	}
	local := start.In(eventLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, eventLocation).AddDate(0, 0, day-1)
}

// FormatDate renders a long date such as "Monday, October 20, 2025".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(eventLocation).Format(longDateLayout)
}

// FormatDayDate renders the short day date used in day tabs.
func FormatDayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(eventLocation).Format(dayDateLayout)
}

// FormatDateRange renders "October 20-22, 2025" for ranges within one month
// and "Oct 30 - Nov 2, 2025" otherwise.
func FormatDateRange(start, end time.Time) string {
	if start.IsZero() {
		return ""
	}
	start = start.In(eventLocation)
	if end.IsZero() {
		end = start
	}
	end = end.In(eventLocation)
	if start.Month() == end.Month() && start.Year() == end.Year() {
		return fmt.Sprintf("%s %d-%d, %d", start.Format("January"), start.Day(), end.Day(), start.Year())
	}
	return fmt.Sprintf("%s - %s, %d", start.Format("Jan 2"), end.Format("Jan 2"), start.Year())
}
