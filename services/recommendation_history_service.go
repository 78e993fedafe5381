package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"atlasp_server/models"
	"atlasp_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// RecommendationHistoryService tracks what was recommended to whom and when,
// and enforces the cooldown between generated recommendations.
type RecommendationHistoryService struct {
	Dynamo *DynamoService
}

// GetRecommendationRecord returns a user's recommendation history, or nil
// when none exists yet.
func (rh *RecommendationHistoryService) GetRecommendationRecord(ctx context.Context, userID string) (*models.RecommendationRecord, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := rh.Dynamo.GetItem(ctx, models.RecommendationsTable, key)
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record models.RecommendationRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendation record: %w", err)
	}
	return &record, nil
}

// GetManyRecommendationRecords returns the records for the given users,
// keyed by user id. Users without a record are absent.
func (rh *RecommendationHistoryService) GetManyRecommendationRecords(ctx context.Context, userIDs []string) (map[string]models.RecommendationRecord, error) {
	records := map[string]models.RecommendationRecord{}
	if len(userIDs) == 0 {
		return records, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: id},
		})
	}

	items, err := rh.Dynamo.BatchGetItems(ctx, models.RecommendationsTable, keys)
	if err != nil {
		return nil, err
	}

	var fetched []models.RecommendationRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &fetched); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendation records: %w", err)
	}
	for _, record := range fetched {
		records[record.UserID] = record
	}
	return records, nil
}

// WriteRecommendation appends a recommendation under now's date key and
// makes it the latest one. Creates the record on first write.
func (rh *RecommendationHistoryService) WriteRecommendation(ctx context.Context, userID, recommendedUserID string, now time.Time) (*models.RecommendationRecord, error) {
	prior, err := rh.GetRecommendationRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	record := models.RecommendationRecord{
		UserID:             userID,
		AllRecommendations: map[string]string{},
		LastRecommendation: models.DateKey(now),
	}
	if prior != nil {
		for dateKey, recommended := range prior.AllRecommendations {
			record.AllRecommendations[dateKey] = recommended
		}
		record.LastUserSeenRecommendation = prior.LastUserSeenRecommendation
	}
	record.AllRecommendations[record.LastRecommendation] = recommendedUserID

	if err := rh.Dynamo.PutItem(ctx, models.RecommendationsTable, record); err != nil {
		return nil, err
	}
	log.Printf("Recommended %s to %s", recommendedUserID, userID)
	return &record, nil
}

// IsEligibleForNewRecommendation reports whether enough days have passed
// since the record's latest recommendation. A missing record is always
// eligible.
func IsEligibleForNewRecommendation(record *models.RecommendationRecord, now time.Time, cooldownDays int) bool {
	if record == nil || record.LastRecommendation == "" {
		return true
	}
	lastDate, err := time.Parse(models.DateKeyLayout, record.LastRecommendation)
	if err != nil {
		return true
	}
	return utils.DaysSince(now, lastDate) > cooldownDays
}

// ShouldShowRecommendationPrompt reports whether the user still has an
// unacknowledged recommendation.
func ShouldShowRecommendationPrompt(record *models.RecommendationRecord) bool {
	if record == nil || record.LastRecommendation == "" {
		return false
	}
	return record.LastUserSeenRecommendation != record.LastRecommendation
}

// GetPendingRecommendation returns the latest recommended user id when the
// user hasn't acknowledged it yet, or "" otherwise.
func (rh *RecommendationHistoryService) GetPendingRecommendation(ctx context.Context, userID string) (string, error) {
	record, err := rh.GetRecommendationRecord(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ShouldShowRecommendationPrompt(record) {
		return "", nil
	}
	return record.LastRecommendedUser(), nil
}

// AcknowledgeRecommendation marks the latest recommendation as seen.
func (rh *RecommendationHistoryService) AcknowledgeRecommendation(ctx context.Context, userID string) error {
	record, err := rh.GetRecommendationRecord(ctx, userID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("recommendation record for %s: %w", userID, ErrItemNotFound)
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	_, err = rh.Dynamo.UpdateItem(ctx, models.RecommendationsTable,
		"SET lastUserSeenRecommendation = :seen", key,
		map[string]types.AttributeValue{":seen": &types.AttributeValueMemberS{Value: record.LastRecommendation}},
		nil,
	)
	return err
}
