package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"atlasp_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// EventService owns event CRUD and feeds every attendee change through the
// connection indexer. Attendee ids are validated by the controller before
// they get here.
type EventService struct {
	Dynamo      *DynamoService
	Connections *ConnectionService
}

// CreateEvent stores a new event and indexes its attendee pairs.
func (es *EventService) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.CreatedAt = time.Now()

	if err := es.Dynamo.PutItem(ctx, models.EventsTable, event); err != nil {
		return nil, err
	}
	log.Printf("Created event %s with %d attendees", event.EventID, len(event.Attendees))

	if err := es.Connections.ApplyEventCreate(ctx, event.EventID, event.Attendees); err != nil {
		return nil, fmt.Errorf("event %s stored but indexing failed: %w", event.EventID, err)
	}
	return &event, nil
}

// UpdateEvent replaces an event and reindexes the attendee delta against the
// previous attendee set.
func (es *EventService) UpdateEvent(ctx context.Context, eventID string, updated models.Event) (*models.Event, error) {
	previous, err := es.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	updated.EventID = eventID
	updated.CreatedAt = previous.CreatedAt
	if err := es.Dynamo.PutItem(ctx, models.EventsTable, updated); err != nil {
		return nil, err
	}

	if err := es.Connections.ApplyEventUpdate(ctx, eventID, previous.Attendees, updated.Attendees); err != nil {
		return nil, fmt.Errorf("event %s stored but indexing failed: %w", eventID, err)
	}
	return &updated, nil
}

// DeleteEvent removes an event and unindexes it from every attendee pair.
func (es *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	event, err := es.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	key := map[string]types.AttributeValue{
		"eventId": &types.AttributeValueMemberS{Value: eventID},
	}
	if err := es.Dynamo.DeleteItem(ctx, models.EventsTable, key); err != nil {
		return err
	}

	if err := es.Connections.ApplyEventDelete(ctx, eventID, event.Attendees); err != nil {
		return fmt.Errorf("event %s deleted but indexing failed: %w", eventID, err)
	}
	return nil
}

// GetEvent retrieves an event by ID
func (es *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	key := map[string]types.AttributeValue{
		"eventId": &types.AttributeValueMemberS{Value: eventID},
	}

	item, err := es.Dynamo.GetItem(ctx, models.EventsTable, key)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := attributevalue.UnmarshalMap(item, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}

// GetManyEvents retrieves a batch of events by ID. Unknown ids are simply
// absent from the result.
func (es *EventService) GetManyEvents(ctx context.Context, eventIDs []string) ([]models.Event, error) {
	if len(eventIDs) == 0 {
		return []models.Event{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(eventIDs))
	for _, id := range eventIDs {
		keys = append(keys, map[string]types.AttributeValue{
			"eventId": &types.AttributeValueMemberS{Value: id},
		})
	}

	items, err := es.Dynamo.BatchGetItems(ctx, models.EventsTable, keys)
	if err != nil {
		return nil, err
	}

	var events []models.Event
	if err := attributevalue.UnmarshalListOfMaps(items, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}
	return events, nil
}

// GetAllEvents returns the full event history
func (es *EventService) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := es.Dynamo.ScanWithFilter(ctx, models.EventsTable, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}
