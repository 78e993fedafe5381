package models

import "time"

// Account tracks a user's premium subscription window.
type Account struct {
	UserID     string    `dynamodbav:"userId"`
	Expiration time.Time `dynamodbav:"expiration"`
}

// IsPremium reports whether the subscription is still active at now.
func (a Account) IsPremium(now time.Time) bool {
	return a.Expiration.After(now)
}

// AccountsTable is the DynamoDB table name for accounts
const AccountsTable = "Accounts"
