package utils

import (
	"math"
	"time"
)

const singleDay = 24 * time.Hour

// DaysBetween returns the rounded number of days from b to a.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(a.Sub(b).Hours() / singleDay.Hours()))
}

// DaysSince returns the rounded number of days from t to now.
func DaysSince(now, t time.Time) int {
	return DaysBetween(now, t)
}

// IncrementDate returns date shifted by the given number of days.
func IncrementDate(date time.Time, days int) time.Time {
	return date.AddDate(0, 0, days)
}
