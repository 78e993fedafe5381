package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"atlasp_server/models"
	"atlasp_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type UserService struct {
	Dynamo *DynamoService
}

// CreateUser stores a new user with a freshly seeded connection graph: the
// self edge always, plus a placeholder edge back to the creating user when
// another user is adding them. The creator's own side of that edge is written
// by the connection service.
func (us *UserService) CreateUser(ctx context.Context, user models.User, createdBy string) (*models.User, error) {
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.CreatedBy = createdBy
	user.Connections = map[string][]string{user.UserID: {}}
	if createdBy != "" {
		user.Connections[createdBy] = []string{}
	}

	if err := us.Dynamo.PutItem(ctx, models.UsersTable, user); err != nil {
		return nil, err
	}
	log.Printf("Created user %s", user.UserID)
	return &user, nil
}

// GetUser retrieves a user by ID
func (us *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := us.Dynamo.GetItem(ctx, models.UsersTable, key)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(item, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

// GetManyUsers retrieves a batch of users by ID. Unknown ids are simply
// absent from the result.
func (us *UserService) GetManyUsers(ctx context.Context, userIDs []string) ([]models.User, error) {
	if len(userIDs) == 0 {
		return []models.User{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: id},
		})
	}

	items, err := us.Dynamo.BatchGetItems(ctx, models.UsersTable, keys)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := attributevalue.UnmarshalListOfMaps(items, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users: %w", err)
	}
	return users, nil
}

// SaveConnections writes back a user's adjacency map as a single attribute
// update, the one per-document atomic write the indexer relies on.
func (us *UserService) SaveConnections(ctx context.Context, userID string, connections map[string][]string) error {
	marshaled, err := attributevalue.Marshal(connections)
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	_, err = us.Dynamo.UpdateItem(ctx, models.UsersTable, "SET #connections = :connections", key,
		map[string]types.AttributeValue{":connections": marshaled},
		map[string]string{"#connections": "connections"},
	)
	return err
}

// GetAllUsers returns every user record
func (us *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := us.Dynamo.ScanWithFilter(ctx, models.UsersTable, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetClaimedUsers returns every activated user account
func (us *UserService) GetClaimedUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := us.Dynamo.ScanWithFilter(ctx, models.UsersTable, func(item map[string]types.AttributeValue) bool {
		return utils.ExtractBool(item, "claimed")
	}, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ClaimUser activates the account registered under the given phone number
func (us *UserService) ClaimUser(ctx context.Context, phoneNumber string) (*models.User, error) {
	var matches []models.User
	err := us.Dynamo.ScanWithFilter(ctx, models.UsersTable, func(item map[string]types.AttributeValue) bool {
		return utils.ExtractString(item, "phoneNumber") == phoneNumber
	}, &matches)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrItemNotFound
	}

	user := matches[0]
	if user.Claimed {
		return nil, fmt.Errorf("user %s has already been claimed", user.UserID)
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: user.UserID},
	}
	_, err = us.Dynamo.UpdateItem(ctx, models.UsersTable, "SET claimed = :claimed", key,
		map[string]types.AttributeValue{":claimed": &types.AttributeValueMemberBOOL{Value: true}},
		nil,
	)
	if err != nil {
		return nil, err
	}

	user.Claimed = true
	return &user, nil
}
