package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"atlasp_server/models"
)

// ErrNonEmptyConnection is returned when a user tries to sever a connection
// that still has shared events behind it.
var ErrNonEmptyConnection = errors.New("connection has shared events and cannot be removed")

// connectionUserStore is the slice of the user store the indexer needs.
// *UserService is the production implementation.
type connectionUserStore interface {
	GetManyUsers(ctx context.Context, userIDs []string) ([]models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	SaveConnections(ctx context.Context, userID string, connections map[string][]string) error
}

// connectionEventStore supplies the event history for full rebuilds.
// *EventService is the production implementation.
type connectionEventStore interface {
	GetAllEvents(ctx context.Context) ([]models.Event, error)
}

// ConnectionService keeps every user's adjacency map consistent with the
// event history. Each operation rewrites one user document at a time; there
// is no cross-document transaction, so a mid-operation failure leaves the
// graph partially updated and ReindexAll is the repair path.
type ConnectionService struct {
	Users  connectionUserStore
	Events connectionEventStore

	locks sync.Map // userID -> *sync.Mutex
}

// ApplyEventCreate records eventID on the adjacency lists of every attendee
// pair, including each attendee's self edge. Indexing the same event twice is
// a no-op.
func (cs *ConnectionService) ApplyEventCreate(ctx context.Context, eventID string, attendeeIDs []string) error {
	return cs.applyToUsers(ctx, attendeeIDs, func(user models.User, allUsers map[string]models.User) map[string][]string {
		return appendConnection(user.Connections, attendeeIDs, eventID)
	})
}

// ApplyEventUpdate applies an attendee-set change for an existing event.
// Pairs only in the old set lose the event id (with pruning), pairs only in
// the new set gain it, pairs in both are untouched.
func (cs *ConnectionService) ApplyEventUpdate(ctx context.Context, eventID string, oldAttendeeIDs, newAttendeeIDs []string) error {
	removedIDs := difference(oldAttendeeIDs, newAttendeeIDs)
	addedIDs := difference(newAttendeeIDs, oldAttendeeIDs)
	if len(removedIDs) == 0 && len(addedIDs) == 0 {
		return nil
	}

	touched := union(oldAttendeeIDs, newAttendeeIDs)
	oldSet := toSet(oldAttendeeIDs)
	newSet := toSet(newAttendeeIDs)

	return cs.applyToUsers(ctx, touched, func(user models.User, allUsers map[string]models.User) map[string][]string {
		connections := user.Connections
		if oldSet[user.UserID] {
			removeTargets := removedIDs
			if !newSet[user.UserID] {
				// A removed attendee loses the event against everyone.
				removeTargets = oldAttendeeIDs
			}
			connections = removeConnection(connections, removeTargets, eventID, user, allUsers)
		}
		if newSet[user.UserID] {
			addTargets := addedIDs
			if !oldSet[user.UserID] {
				addTargets = newAttendeeIDs
			}
			connections = appendConnection(connections, addTargets, eventID)
		}
		return connections
	})
}

// ApplyEventDelete removes a deleted event from every attendee pair.
func (cs *ConnectionService) ApplyEventDelete(ctx context.Context, eventID string, attendeeIDs []string) error {
	return cs.ApplyEventUpdate(ctx, eventID, attendeeIDs, nil)
}

// AddManualConnection links two users with a zero-event edge (both
// directions), the way inviting someone into the graph does.
func (cs *ConnectionService) AddManualConnection(ctx context.Context, ownerID, otherID string) error {
	pair := []string{ownerID, otherID}
	return cs.applyToUsers(ctx, pair, func(user models.User, allUsers map[string]models.User) map[string][]string {
		return appendConnection(user.Connections, pair, "")
	})
}

// RemoveManualConnection severs the owner's edge to otherID. Allowed only
// when the two share no events; an explicit removal also overrides the
// creator-edge retention that automatic pruning honors.
func (cs *ConnectionService) RemoveManualConnection(ctx context.Context, ownerID, otherID string) error {
	mu := cs.lockFor(ownerID)
	mu.Lock()
	defer mu.Unlock()

	users, err := cs.Users.GetManyUsers(ctx, []string{ownerID})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return fmt.Errorf("user %s: %w", ownerID, ErrItemNotFound)
	}

	owner := users[0]
	if len(owner.Connections[otherID]) > 0 {
		return ErrNonEmptyConnection
	}

	connections := copyConnections(owner.Connections)
	delete(connections, otherID)
	return cs.Users.SaveConnections(ctx, ownerID, connections)
}

// ReindexAll rebuilds the whole graph from the event history: every user is
// reset to their self edge plus creator placeholder edges, then every event
// is replayed. Safe to run repeatedly; this is the recovery path for drift
// left behind by partially applied operations.
func (cs *ConnectionService) ReindexAll(ctx context.Context) error {
	users, err := cs.Users.GetAllUsers(ctx)
	if err != nil {
		return err
	}

	cleared := make(map[string]map[string][]string, len(users))
	for _, user := range users {
		cleared[user.UserID] = map[string][]string{user.UserID: {}}
	}
	for _, user := range users {
		if user.CreatedBy == "" {
			continue
		}
		cleared[user.UserID][user.CreatedBy] = []string{}
		if creator, ok := cleared[user.CreatedBy]; ok {
			creator[user.UserID] = []string{}
		}
	}

	for _, user := range users {
		if err := cs.Users.SaveConnections(ctx, user.UserID, cleared[user.UserID]); err != nil {
			return fmt.Errorf("failed to clear connections for %s: %w", user.UserID, err)
		}
	}

	events, err := cs.Events.GetAllEvents(ctx)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := cs.ApplyEventCreate(ctx, event.EventID, event.Attendees); err != nil {
			return fmt.Errorf("failed to replay event %s: %w", event.EventID, err)
		}
	}

	log.Printf("Reindexed %d users from %d events", len(users), len(events))
	return nil
}

// applyToUsers runs a read-modify-write cycle for each referenced user in
// order, serialized per user document. Unknown user ids are skipped; a
// failed write aborts the remaining ones.
func (cs *ConnectionService) applyToUsers(
	ctx context.Context,
	userIDs []string,
	mapping func(user models.User, allUsers map[string]models.User) map[string][]string,
) error {
	ids := dedupe(userIDs)

	users, err := cs.Users.GetManyUsers(ctx, ids)
	if err != nil {
		return err
	}
	allUsers := make(map[string]models.User, len(users))
	for _, user := range users {
		allUsers[user.UserID] = user
	}

	for _, id := range ids {
		if _, ok := allUsers[id]; !ok {
			log.Printf("Skipping unknown user %s during indexing", id)
			continue
		}
		if err := cs.indexSingleUser(ctx, id, allUsers, mapping); err != nil {
			return err
		}
	}
	return nil
}

func (cs *ConnectionService) indexSingleUser(
	ctx context.Context,
	userID string,
	allUsers map[string]models.User,
	mapping func(user models.User, allUsers map[string]models.User) map[string][]string,
) error {
	mu := cs.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock so concurrent operations on the same document
	// cannot lose each other's updates.
	fresh, err := cs.Users.GetManyUsers(ctx, []string{userID})
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		log.Printf("Skipping unknown user %s during indexing", userID)
		return nil
	}

	return cs.Users.SaveConnections(ctx, userID, mapping(fresh[0], allUsers))
}

func (cs *ConnectionService) lockFor(userID string) *sync.Mutex {
	mu, _ := cs.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// appendConnection returns a copy of connections with eventID appended to the
// entry for each id in appendIDs, skipping lists that already hold it. An
// empty eventID only seeds missing entries with empty lists.
func appendConnection(connections map[string][]string, appendIDs []string, eventID string) map[string][]string {
	updated := copyConnections(connections)
	for _, id := range appendIDs {
		current := updated[id]
		if eventID == "" {
			if _, ok := updated[id]; !ok {
				updated[id] = []string{}
			}
			continue
		}
		if !containsEvent(current, eventID) {
			updated[id] = append(append([]string{}, current...), eventID)
		}
	}
	return updated
}

// removeConnection returns a copy of connections with eventID removed from
// the entries for removeIDs. Entries that become empty are deleted unless
// they are the owner's self edge or a creator/created-by relation, so
// account provenance survives even when every shared event goes away.
func removeConnection(
	connections map[string][]string,
	removeIDs []string,
	eventID string,
	owner models.User,
	allUsers map[string]models.User,
) map[string][]string {
	updated := copyConnections(connections)
	for _, id := range removeIDs {
		current, ok := updated[id]
		if !ok {
			continue
		}
		remaining := make([]string, 0, len(current))
		removed := false
		for _, existing := range current {
			if !removed && existing == eventID {
				removed = true
				continue
			}
			remaining = append(remaining, existing)
		}
		if !removed {
			continue
		}
		if len(remaining) == 0 && id != owner.UserID && id != owner.CreatedBy && allUsers[id].CreatedBy != owner.UserID {
			delete(updated, id)
			continue
		}
		updated[id] = remaining
	}
	return updated
}

func copyConnections(connections map[string][]string) map[string][]string {
	updated := make(map[string][]string, len(connections))
	for id, events := range connections {
		updated[id] = append([]string{}, events...)
	}
	return updated
}

func containsEvent(events []string, eventID string) bool {
	for _, existing := range events {
		if existing == eventID {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func difference(a, b []string) []string {
	bSet := toSet(b)
	var result []string
	for _, id := range a {
		if !bSet[id] {
			result = append(result, id)
		}
	}
	return result
}

func union(a, b []string) []string {
	return append(append([]string{}, a...), difference(b, a)...)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var result []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
