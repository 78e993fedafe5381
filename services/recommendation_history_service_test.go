package services

import (
	"testing"
	"time"

	"atlasp_server/models"

	"github.com/stretchr/testify/assert"
)

func historyRecord(lastKey, seenKey string) *models.RecommendationRecord {
	return &models.RecommendationRecord{
		UserID:                     "me",
		AllRecommendations:         map[string]string{lastKey: "other"},
		LastRecommendation:         lastKey,
		LastUserSeenRecommendation: seenKey,
	}
}

func TestIsEligibleWithoutPriorRecord(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	assert.True(t, IsEligibleForNewRecommendation(nil, now, 7))
	assert.True(t, IsEligibleForNewRecommendation(&models.RecommendationRecord{UserID: "me"}, now, 7))
}

func TestIsEligibleRespectsCooldownBoundary(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	// Exactly seven days is still inside the cooldown.
	assert.False(t, IsEligibleForNewRecommendation(historyRecord("2024-06-03", ""), now, 7))
	assert.True(t, IsEligibleForNewRecommendation(historyRecord("2024-06-02", ""), now, 7))
	assert.False(t, IsEligibleForNewRecommendation(historyRecord("2024-06-09", ""), now, 7))
}

func TestIsEligibleWithUnparseableDate(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, IsEligibleForNewRecommendation(historyRecord("not-a-date", ""), now, 7))
}

func TestShouldShowRecommendationPrompt(t *testing.T) {
	assert.False(t, ShouldShowRecommendationPrompt(nil))
	assert.False(t, ShouldShowRecommendationPrompt(&models.RecommendationRecord{UserID: "me"}))
	assert.True(t, ShouldShowRecommendationPrompt(historyRecord("2024-06-03", "")))
	assert.True(t, ShouldShowRecommendationPrompt(historyRecord("2024-06-03", "2024-05-27")))
	assert.False(t, ShouldShowRecommendationPrompt(historyRecord("2024-06-03", "2024-06-03")))
}

func TestLastRecommendedUser(t *testing.T) {
	record := models.RecommendationRecord{
		AllRecommendations: map[string]string{
			"2024-06-01": "early",
			"2024-06-08": "late",
		},
		LastRecommendation: "2024-06-08",
	}
	assert.Equal(t, "late", record.LastRecommendedUser())
	assert.Equal(t, "", models.RecommendationRecord{}.LastRecommendedUser())
}
