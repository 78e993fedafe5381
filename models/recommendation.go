package models

import "time"

// RecommendationRecord is the append-only recommendation history for one
// user. AllRecommendations maps a date key to the recommended user id;
// LastRecommendation is the most recent key written and
// LastUserSeenRecommendation the key the user last acknowledged.
type RecommendationRecord struct {
	UserID                     string            `dynamodbav:"userId"`
	AllRecommendations         map[string]string `dynamodbav:"allRecommendations"`
	LastRecommendation         string            `dynamodbav:"lastRecommendation"`
	LastUserSeenRecommendation string            `dynamodbav:"lastUserSeenRecommendation,omitempty"`
}

// DateKeyLayout is the format of AllRecommendations keys.
const DateKeyLayout = "2006-01-02"

// DateKey renders the date key for a recommendation written at t.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// LastRecommendedUser returns the counterpart of the most recent
// recommendation, or "" when the record has none.
func (r RecommendationRecord) LastRecommendedUser() string {
	if r.AllRecommendations == nil {
		return ""
	}
	return r.AllRecommendations[r.LastRecommendation]
}

// RecommendationsTable is the DynamoDB table name for recommendation records
const RecommendationsTable = "Recommendations"
