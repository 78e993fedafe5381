package models

import "time"

// Event is a shared event between two or more users. Attendees includes the
// host; attendee validation happens upstream of the indexer.
type Event struct {
	EventID     string    `dynamodbav:"eventId"`
	Date        time.Time `dynamodbav:"date"`
	Description string    `dynamodbav:"description,omitempty"`
	Host        string    `dynamodbav:"host,omitempty"`
	Attendees   []string  `dynamodbav:"attendees"`
	CreatedAt   time.Time `dynamodbav:"createdAt"`
}

// EventsTable is the DynamoDB table name for events
const EventsTable = "Events"
