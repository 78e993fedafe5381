package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetweenRoundsToNearestDay(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(base, base))
	assert.Equal(t, 3, DaysBetween(base.AddDate(0, 0, 3), base))
	assert.Equal(t, -3, DaysBetween(base, base.AddDate(0, 0, 3)))
	assert.Equal(t, 1, DaysBetween(base.Add(13*time.Hour), base))
	assert.Equal(t, 0, DaysBetween(base.Add(11*time.Hour), base))
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, DaysSince(now, now.AddDate(0, 0, -7)))
}

func TestIncrementDate(t *testing.T) {
	date := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC), IncrementDate(date, 3))
	assert.Equal(t, time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC), IncrementDate(date, -1))
}
