package services

import (
	"math"
	"sort"
	"time"

	"atlasp_server/models"
	"atlasp_server/utils"
)

type RecommendationKind string

const (
	// RecommendationNewFriend marks a connection the user has never shared an
	// event with; it outranks every numeric score.
	RecommendationNewFriend RecommendationKind = "NEW_FRIEND"
	RecommendationScored    RecommendationKind = "SCORED"
	// RecommendationAddFriend is the self-referential fallback when nobody is
	// eligible.
	RecommendationAddFriend RecommendationKind = "ADD_FRIEND"
)

// Recommendation is the scorer's single result: who the active user should
// see next.
type Recommendation struct {
	UserID string
	Kind   RecommendationKind
	Score  float64
}

// ScoringConfig collects the tunables the scoring formula historically
// flip-flopped on. Use DefaultScoringConfig unless product says otherwise.
type ScoringConfig struct {
	TotalConnectionsModifier   float64
	LatestEventModifier        float64
	DefaultFrequencyDays       int
	FrequentMultiplier         float64
	SemiFrequentMultiplier     float64
	RecommendationCooldownDays int
	InactiveThresholdDays      int
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		TotalConnectionsModifier:   1.0,
		LatestEventModifier:        1.2,
		DefaultFrequencyDays:       30,
		FrequentMultiplier:         16,
		SemiFrequentMultiplier:     8,
		RecommendationCooldownDays: 7,
		InactiveThresholdDays:      30,
	}
}

// ScoringInput is a consistent snapshot of everything the scorer reads. The
// scorer itself performs no I/O.
type ScoringInput struct {
	ActiveUser    models.User
	EventsByID    map[string]models.Event
	UserCreatedAt map[string]time.Time
	Relationship  models.Relationship
	IsPremium     bool
	Prior         *models.RecommendationRecord
	Now           time.Time
}

type candidateScore struct {
	userID string
	score  float64
}

// Recommend picks who the active user should see next. Never-met connections
// win outright, oldest first; otherwise the highest scorer wins, demoted to
// the runner-up when it would repeat the previous recommendation; with
// nothing eligible the user is told to add a new friend.
func Recommend(input ScoringInput, cfg ScoringConfig) Recommendation {
	newFriends, scored := generateScores(input, cfg)

	if len(newFriends) > 0 {
		sort.Slice(newFriends, func(i, j int) bool {
			a, b := input.UserCreatedAt[newFriends[i]], input.UserCreatedAt[newFriends[j]]
			if a.Equal(b) {
				return newFriends[i] < newFriends[j]
			}
			return a.Before(b)
		})
		return Recommendation{UserID: newFriends[0], Kind: RecommendationNewFriend}
	}

	if len(scored) > 0 {
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].score == scored[j].score {
				return scored[i].userID < scored[j].userID
			}
			return scored[i].score > scored[j].score
		})

		pick := scored[0]
		if input.Prior != nil && input.Prior.LastRecommendedUser() == pick.userID {
			if len(scored) < 2 {
				return Recommendation{UserID: input.ActiveUser.UserID, Kind: RecommendationAddFriend}
			}
			pick = scored[1]
		}
		return Recommendation{UserID: pick.userID, Kind: RecommendationScored, Score: pick.score}
	}

	return Recommendation{UserID: input.ActiveUser.UserID, Kind: RecommendationAddFriend}
}

// generateScores partitions the active user's connections into never-met
// candidates and positively scored ones. The score is
// totalSharedEvents^a * daysPastCooldown^b * relationshipMultiplier;
// connections still inside their cooldown score zero and drop out, as do
// ignored connections and those whose events cannot be resolved.
func generateScores(input ScoringInput, cfg ScoringConfig) (newFriends []string, scored []candidateScore) {
	for otherID, sharedEvents := range input.ActiveUser.Connections {
		if otherID == input.ActiveUser.UserID {
			continue
		}

		if len(sharedEvents) == 0 {
			newFriends = append(newFriends, otherID)
			continue
		}

		weight := input.Relationship.WeightFor(otherID, input.IsPremium,
			cfg.DefaultFrequencyDays, cfg.FrequentMultiplier, cfg.SemiFrequentMultiplier)
		if weight.Ignored {
			continue
		}

		latest, ok := latestSharedDate(sharedEvents, input.EventsByID)
		if !ok {
			continue
		}

		daysPastCooldown := float64(utils.DaysSince(input.Now, latest) - weight.CooldownDays)
		if daysPastCooldown < 0 {
			daysPastCooldown = 0
		}

		volume := math.Pow(float64(len(sharedEvents)), cfg.TotalConnectionsModifier)
		recency := math.Pow(daysPastCooldown, cfg.LatestEventModifier)
		score := volume * recency * weight.Multiplier
		if score > 0 && !math.IsNaN(score) {
			scored = append(scored, candidateScore{userID: otherID, score: score})
		}
	}
	return newFriends, scored
}

// latestSharedDate resolves the most recent event date in the list. Event
// ids that no longer resolve are skipped; ok is false when none resolve.
func latestSharedDate(eventIDs []string, eventsByID map[string]models.Event) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, id := range eventIDs {
		event, ok := eventsByID[id]
		if !ok {
			continue
		}
		if !found || event.Date.After(latest) {
			latest = event.Date
			found = true
		}
	}
	return latest, found
}
