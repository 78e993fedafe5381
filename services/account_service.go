package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atlasp_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type AccountService struct {
	Dynamo *DynamoService
}

// AccountStatus is what the rest of the system consumes: premium is simply
// "expiration is still in the future".
type AccountStatus struct {
	Expiration time.Time `json:"expiration,omitempty"`
	IsPremium  bool      `json:"isPremium"`
}

// CheckAccountStatus resolves a user's premium status; users without an
// account record are not premium.
func (as *AccountService) CheckAccountStatus(ctx context.Context, userID string, now time.Time) (AccountStatus, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := as.Dynamo.GetItem(ctx, models.AccountsTable, key)
	if errors.Is(err, ErrItemNotFound) {
		return AccountStatus{}, nil
	}
	if err != nil {
		return AccountStatus{}, err
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(item, &account); err != nil {
		return AccountStatus{}, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return AccountStatus{Expiration: account.Expiration, IsPremium: account.IsPremium(now)}, nil
}

// GetManyAccounts returns account records keyed by user id; users without
// one are absent.
func (as *AccountService) GetManyAccounts(ctx context.Context, userIDs []string) (map[string]models.Account, error) {
	accounts := map[string]models.Account{}
	if len(userIDs) == 0 {
		return accounts, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: id},
		})
	}

	items, err := as.Dynamo.BatchGetItems(ctx, models.AccountsTable, keys)
	if err != nil {
		return nil, err
	}

	var fetched []models.Account
	if err := attributevalue.UnmarshalListOfMaps(items, &fetched); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}
	for _, account := range fetched {
		accounts[account.UserID] = account
	}
	return accounts, nil
}

// UpgradeUser extends a user's premium window to the given expiration.
func (as *AccountService) UpgradeUser(ctx context.Context, userID string, expiration time.Time, now time.Time) (AccountStatus, error) {
	account := models.Account{UserID: userID, Expiration: expiration}
	if err := as.Dynamo.PutItem(ctx, models.AccountsTable, account); err != nil {
		return AccountStatus{}, err
	}
	return AccountStatus{Expiration: expiration, IsPremium: account.IsPremium(now)}, nil
}
