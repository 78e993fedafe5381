package models

import "time"

// User is a node in the connection graph. Connections maps another user's id
// to the ordered list of event ids the two have shared; the list keyed by the
// user's own id (the self edge) holds every event the user has attended.
type User struct {
	UserID      string              `dynamodbav:"userId"`
	Name        string              `dynamodbav:"name,omitempty"`
	PhoneNumber string              `dynamodbav:"phoneNumber,omitempty"`
	Gender      string              `dynamodbav:"gender,omitempty"`
	Location    string              `dynamodbav:"location,omitempty"`
	Age         int                 `dynamodbav:"age,omitempty"`
	Claimed     bool                `dynamodbav:"claimed"`
	CreatedBy   string              `dynamodbav:"createdBy,omitempty"`
	CreatedAt   time.Time           `dynamodbav:"createdAt"`
	Connections map[string][]string `dynamodbav:"connections"`
}

// SelfEvents returns the user's own shared-event ids (the self edge).
func (u User) SelfEvents() []string {
	if u.Connections == nil {
		return nil
	}
	return u.Connections[u.UserID]
}

// UsersTable is the DynamoDB table name for users
const UsersTable = "Users"
