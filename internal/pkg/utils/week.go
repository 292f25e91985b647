package utils

import "time"

// ISOWeek returns the ISO 8601 week number and week-year of date.
// A zero date yields (0, 0).
func ISOWeek(date time.Time) (week int, year int) {
	if date.IsZero() {
		return 0, 0
	}
	year, week = date.ISOWeek()
	return week, year
}

// WeekDisplayDate returns the Sunday that closes the given ISO week.
// January 4th always falls in week 1, so the Monday of week 1 is found from it.
func WeekDisplayDate(weekYear, weekNumber int) time.Time {
	if weekYear == 0 || weekNumber == 0 {
		return time.Time{}
	}
	jan4 := time.Date(weekYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	isoWeekday := int(jan4.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}
	weekOneMonday := jan4.AddDate(0, 0, -(isoWeekday - 1))
	return weekOneMonday.AddDate(0, 0, (weekNumber-1)*7+6)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
