package services

import (
	"math"
	"testing"
	"time"

	"atlasp_server/models"

	"github.com/stretchr/testify/assert"
)

var scoringNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func scoringUser(connections map[string][]string) models.User {
	return models.User{UserID: "me", Connections: connections}
}

func eventOn(id string, daysAgo int) models.Event {
	return models.Event{EventID: id, Date: scoringNow.AddDate(0, 0, -daysAgo)}
}

func TestRecommendPrefersNewFriendsOverScores(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":    {"E1"},
			"never": {},
			"often": {"E1"},
		}),
		EventsByID: map[string]models.Event{"E1": eventOn("E1", 60)},
		Now:        scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationNewFriend, result.Kind)
	assert.Equal(t, "never", result.UserID)
}

func TestRecommendPicksOldestNewFriendFirst(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me": {}, "young": {}, "old": {},
		}),
		UserCreatedAt: map[string]time.Time{
			"young": scoringNow.AddDate(0, 0, -1),
			"old":   scoringNow.AddDate(0, -6, 0),
		},
		Now: scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationNewFriend, result.Kind)
	assert.Equal(t, "old", result.UserID)
}

func TestRecommendBreaksNewFriendTiesByID(t *testing.T) {
	created := scoringNow.AddDate(0, -1, 0)
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me": {}, "bbb": {}, "aaa": {},
		}),
		UserCreatedAt: map[string]time.Time{"aaa": created, "bbb": created},
		Now:           scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, "aaa", result.UserID)
}

func TestRecommendScoresByVolumeAndRecency(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":     {"E1", "E2", "E3"},
			"rare":   {"E1"},
			"steady": {"E2", "E3"},
		}),
		EventsByID: map[string]models.Event{
			"E1": eventOn("E1", 40),
			"E2": eventOn("E2", 40),
			"E3": eventOn("E3", 40),
		},
		Now: scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationScored, result.Kind)
	assert.Equal(t, "steady", result.UserID)
	// 2 shared events, 10 days past the 30 day cooldown, no multiplier.
	assert.InDelta(t, 2*math.Pow(10, 1.2), result.Score, 1e-9)
}

func TestRecommendExcludesConnectionsInsideCooldown(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":     {"E1"},
			"recent": {"E1"},
		}),
		EventsByID: map[string]models.Event{"E1": eventOn("E1", 10)},
		Now:        scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationAddFriend, result.Kind)
	assert.Equal(t, "me", result.UserID)
}

func TestRecommendSkipsConnectionsWithUnresolvableEvents(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":   {"gone"},
			"lost": {"gone"},
		}),
		EventsByID: map[string]models.Event{},
		Now:        scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationAddFriend, result.Kind)
}

func TestRecommendDemotesRepeatToRunnerUp(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":     {"E1", "E2"},
			"top":    {"E1", "E2"},
			"second": {"E1"},
		}),
		EventsByID: map[string]models.Event{
			"E1": eventOn("E1", 50),
			"E2": eventOn("E2", 50),
		},
		Prior: &models.RecommendationRecord{
			AllRecommendations: map[string]string{"2024-05-20": "top"},
			LastRecommendation: "2024-05-20",
		},
		Now: scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationScored, result.Kind)
	assert.Equal(t, "second", result.UserID)
}

func TestRecommendFallsBackWhenOnlyCandidateWasJustSeen(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":   {"E1"},
			"only": {"E1"},
		}),
		EventsByID: map[string]models.Event{"E1": eventOn("E1", 50)},
		Prior: &models.RecommendationRecord{
			AllRecommendations: map[string]string{"2024-05-25": "only"},
			LastRecommendation: "2024-05-25",
		},
		Now: scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationAddFriend, result.Kind)
	assert.Equal(t, "me", result.UserID)
}

func TestRecommendIgnoredConnectionsAreSkipped(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":      {"E1"},
			"ignored": {"E1"},
		}),
		EventsByID: map[string]models.Event{"E1": eventOn("E1", 50)},
		Relationship: models.Relationship{
			UserID:    "me",
			Frequency: map[string]int{"ignored": models.FrequencyIgnore},
		},
		IsPremium: true,
		Now:       scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationAddFriend, result.Kind)
}

func TestRecommendIgnoreDoesNotSuppressNewFriends(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":    {"E1"},
			"fresh": {},
		}),
		EventsByID: map[string]models.Event{"E1": eventOn("E1", 50)},
		Relationship: models.Relationship{
			UserID:      "me",
			IgnoreUsers: []string{"fresh"},
		},
		IsPremium: true,
		Now:       scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationNewFriend, result.Kind)
	assert.Equal(t, "fresh", result.UserID)
}

func TestRecommendPremiumMultipliersBoostCategories(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":       {"E1", "E2"},
			"busy":     {"E1", "E2"},
			"favorite": {"E1"},
		}),
		EventsByID: map[string]models.Event{
			"E1": eventOn("E1", 40),
			"E2": eventOn("E2", 40),
		},
		Relationship: models.Relationship{
			UserID:        "me",
			FrequentUsers: []string{"favorite"},
		},
		IsPremium: true,
		Now:       scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	// 1 event at 16x outscores 2 events at 1x.
	assert.Equal(t, "favorite", result.UserID)
	assert.InDelta(t, 16*math.Pow(10, 1.2), result.Score, 1e-9)
}

func TestRecommendCustomCooldownAppliesForPremium(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":   {"E1"},
			"soon": {"E1"},
		}),
		EventsByID: map[string]models.Event{"E1": eventOn("E1", 10)},
		Relationship: models.Relationship{
			UserID:    "me",
			Frequency: map[string]int{"soon": 5},
		},
		IsPremium: true,
		Now:       scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationScored, result.Kind)
	assert.Equal(t, "soon", result.UserID)
	assert.InDelta(t, math.Pow(5, 1.2), result.Score, 1e-9)
}

func TestRecommendNonPremiumGetsDefaultWeights(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{
			"me":   {"E1"},
			"soon": {"E1"},
		}),
		EventsByID: map[string]models.Event{"E1": eventOn("E1", 10)},
		Relationship: models.Relationship{
			UserID:    "me",
			Frequency: map[string]int{"soon": 5},
		},
		IsPremium: false,
		Now:       scoringNow,
	}

	// The custom 5 day cooldown is a premium feature; the default 30 day
	// cooldown still applies, so the candidate scores zero.
	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationAddFriend, result.Kind)
}

func TestRecommendWithNoConnectionsFallsBack(t *testing.T) {
	input := ScoringInput{
		ActiveUser: scoringUser(map[string][]string{"me": {"E1"}}),
		EventsByID: map[string]models.Event{"E1": eventOn("E1", 50)},
		Now:        scoringNow,
	}

	result := Recommend(input, DefaultScoringConfig())
	assert.Equal(t, RecommendationAddFriend, result.Kind)
	assert.Equal(t, "me", result.UserID)
}
