package services

import (
	"context"
	"errors"
	"fmt"

	"atlasp_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type RelationshipService struct {
	Dynamo *DynamoService
}

// GetRelationship returns a user's weighting preferences; users without a
// stored record get an empty relationship (all defaults).
func (rs *RelationshipService) GetRelationship(ctx context.Context, userID string) (models.Relationship, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := rs.Dynamo.GetItem(ctx, models.RelationshipsTable, key)
	if errors.Is(err, ErrItemNotFound) {
		return models.Relationship{UserID: userID}, nil
	}
	if err != nil {
		return models.Relationship{}, err
	}

	var relationship models.Relationship
	if err := attributevalue.UnmarshalMap(item, &relationship); err != nil {
		return models.Relationship{}, fmt.Errorf("failed to unmarshal relationship: %w", err)
	}
	return relationship, nil
}

// GetManyRelationships returns stored relationships keyed by user id; users
// without one are absent.
func (rs *RelationshipService) GetManyRelationships(ctx context.Context, userIDs []string) (map[string]models.Relationship, error) {
	relationships := map[string]models.Relationship{}
	if len(userIDs) == 0 {
		return relationships, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: id},
		})
	}

	items, err := rs.Dynamo.BatchGetItems(ctx, models.RelationshipsTable, keys)
	if err != nil {
		return nil, err
	}

	var fetched []models.Relationship
	if err := attributevalue.UnmarshalListOfMaps(items, &fetched); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relationships: %w", err)
	}
	for _, relationship := range fetched {
		relationships[relationship.UserID] = relationship
	}
	return relationships, nil
}

// UpdateFrequency merges new per-connection day counts into the user's
// frequency map and upserts the record.
func (rs *RelationshipService) UpdateFrequency(ctx context.Context, userID string, frequency map[string]int) (models.Relationship, error) {
	current, err := rs.GetRelationship(ctx, userID)
	if err != nil {
		return models.Relationship{}, err
	}

	if current.Frequency == nil {
		current.Frequency = map[string]int{}
	}
	for otherID, days := range frequency {
		current.Frequency[otherID] = days
	}
	current.UserID = userID

	if err := rs.Dynamo.PutItem(ctx, models.RelationshipsTable, current); err != nil {
		return models.Relationship{}, err
	}
	return current, nil
}
