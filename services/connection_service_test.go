package services

import (
	"context"
	"sync"
	"testing"

	"atlasp_server/models"

	"github.com/stretchr/testify/assert"
)

// fakeGraphStore is an in-memory stand-in for the user and event stores.
type fakeGraphStore struct {
	mu     sync.Mutex
	users  map[string]models.User
	events []models.Event
}

func newFakeGraphStore(users ...models.User) *fakeGraphStore {
	store := &fakeGraphStore{users: map[string]models.User{}}
	for _, user := range users {
		store.users[user.UserID] = user
	}
	return store
}

func (f *fakeGraphStore) GetManyUsers(ctx context.Context, userIDs []string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []models.User
	for _, id := range userIDs {
		if user, ok := f.users[id]; ok {
			found = append(found, user)
		}
	}
	return found, nil
}

func (f *fakeGraphStore) GetAllUsers(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.User
	for _, user := range f.users {
		all = append(all, user)
	}
	return all, nil
}

func (f *fakeGraphStore) SaveConnections(ctx context.Context, userID string, connections map[string][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[userID]
	user.Connections = connections
	f.users[userID] = user
	return nil
}

func (f *fakeGraphStore) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Event{}, f.events...), nil
}

func (f *fakeGraphStore) connections(userID string) map[string][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[userID].Connections
}

func graphUser(id string) models.User {
	return models.User{UserID: id, Connections: map[string][]string{id: {}}}
}

func newTestConnectionService(store *fakeGraphStore) *ConnectionService {
	return &ConnectionService{Users: store, Events: store}
}

func TestApplyEventCreateBuildsSymmetricEdges(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"), graphUser("3"))
	cs := newTestConnectionService(store)

	err := cs.ApplyEventCreate(context.Background(), "E1", []string{"1", "2", "3"})
	assert.NoError(t, err)

	assert.Equal(t, map[string][]string{"1": {"E1"}, "2": {"E1"}, "3": {"E1"}}, store.connections("1"))
	assert.Equal(t, map[string][]string{"1": {"E1"}, "2": {"E1"}, "3": {"E1"}}, store.connections("2"))
	assert.Equal(t, map[string][]string{"1": {"E1"}, "2": {"E1"}, "3": {"E1"}}, store.connections("3"))
}

func TestApplyEventCreateIsIdempotent(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"))
	cs := newTestConnectionService(store)

	assert.NoError(t, cs.ApplyEventCreate(context.Background(), "E1", []string{"1", "2"}))
	assert.NoError(t, cs.ApplyEventCreate(context.Background(), "E1", []string{"1", "2"}))

	assert.Equal(t, []string{"E1"}, store.connections("1")["2"])
	assert.Equal(t, []string{"E1"}, store.connections("1")["1"])
}

func TestApplyEventCreateSkipsUnknownUsers(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"))
	cs := newTestConnectionService(store)

	err := cs.ApplyEventCreate(context.Background(), "E1", []string{"1", "ghost"})
	assert.NoError(t, err)

	// The known attendee is still indexed, including the edge to the ghost.
	assert.Equal(t, []string{"E1"}, store.connections("1")["ghost"])
}

func TestApplyEventUpdateRemovesDroppedAttendee(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"), graphUser("3"))
	cs := newTestConnectionService(store)
	ctx := context.Background()

	assert.NoError(t, cs.ApplyEventCreate(ctx, "E1", []string{"1", "2", "3"}))
	assert.NoError(t, cs.ApplyEventUpdate(ctx, "E1", []string{"1", "2", "3"}, []string{"1", "2"}))

	// Kept attendees lose only their edge to the dropped one, which prunes.
	assert.Equal(t, map[string][]string{"1": {"E1"}, "2": {"E1"}}, store.connections("1"))
	assert.Equal(t, map[string][]string{"1": {"E1"}, "2": {"E1"}}, store.connections("2"))
	// The dropped attendee loses the event everywhere, down to the self edge.
	assert.Equal(t, map[string][]string{"3": {}}, store.connections("3"))
}

func TestApplyEventUpdateAddsNewAttendee(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"), graphUser("3"))
	cs := newTestConnectionService(store)
	ctx := context.Background()

	assert.NoError(t, cs.ApplyEventCreate(ctx, "E1", []string{"1", "2"}))
	assert.NoError(t, cs.ApplyEventUpdate(ctx, "E1", []string{"1", "2"}, []string{"1", "2", "3"}))

	assert.Equal(t, map[string][]string{"1": {"E1"}, "2": {"E1"}, "3": {"E1"}}, store.connections("3"))
	assert.Equal(t, []string{"E1"}, store.connections("1")["3"])
	assert.Equal(t, []string{"E1"}, store.connections("2")["3"])
}

func TestApplyEventUpdateLeavesUnchangedPairsAlone(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"), graphUser("3"))
	cs := newTestConnectionService(store)
	ctx := context.Background()

	assert.NoError(t, cs.ApplyEventCreate(ctx, "E1", []string{"1", "2"}))
	assert.NoError(t, cs.ApplyEventCreate(ctx, "E2", []string{"1", "2", "3"}))
	assert.NoError(t, cs.ApplyEventUpdate(ctx, "E2", []string{"1", "2", "3"}, []string{"1", "2"}))

	assert.Equal(t, []string{"E1", "E2"}, store.connections("1")["2"])
	assert.Equal(t, []string{"E1", "E2"}, store.connections("2")["1"])
	assert.NotContains(t, store.connections("1"), "3")
}

func TestApplyEventDeleteRemovesEventEverywhere(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"))
	cs := newTestConnectionService(store)
	ctx := context.Background()

	assert.NoError(t, cs.ApplyEventCreate(ctx, "E1", []string{"1", "2"}))
	assert.NoError(t, cs.ApplyEventDelete(ctx, "E1", []string{"1", "2"}))

	assert.Equal(t, map[string][]string{"1": {}}, store.connections("1"))
	assert.Equal(t, map[string][]string{"2": {}}, store.connections("2"))
}

func TestApplyEventDeleteKeepsCreatorEdges(t *testing.T) {
	creator := graphUser("1")
	created := graphUser("2")
	created.CreatedBy = "1"
	store := newFakeGraphStore(creator, created)
	cs := newTestConnectionService(store)
	ctx := context.Background()

	assert.NoError(t, cs.ApplyEventCreate(ctx, "E1", []string{"1", "2"}))
	assert.NoError(t, cs.ApplyEventDelete(ctx, "E1", []string{"1", "2"}))

	// The edge between a user and their creator survives as an empty list.
	assert.Equal(t, map[string][]string{"1": {}, "2": {}}, store.connections("1"))
	assert.Equal(t, map[string][]string{"1": {}, "2": {}}, store.connections("2"))
}

func TestAddManualConnectionSeedsEmptyEdges(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"))
	cs := newTestConnectionService(store)

	assert.NoError(t, cs.AddManualConnection(context.Background(), "1", "2"))

	assert.Equal(t, []string{}, store.connections("1")["2"])
	assert.Equal(t, []string{}, store.connections("2")["1"])
}

func TestAddManualConnectionDoesNotClobberExistingEdge(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"))
	cs := newTestConnectionService(store)
	ctx := context.Background()

	assert.NoError(t, cs.ApplyEventCreate(ctx, "E1", []string{"1", "2"}))
	assert.NoError(t, cs.AddManualConnection(ctx, "1", "2"))

	assert.Equal(t, []string{"E1"}, store.connections("1")["2"])
}

func TestRemoveManualConnectionRejectsSharedEvents(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"))
	cs := newTestConnectionService(store)
	ctx := context.Background()

	assert.NoError(t, cs.ApplyEventCreate(ctx, "E1", []string{"1", "2"}))

	err := cs.RemoveManualConnection(ctx, "1", "2")
	assert.ErrorIs(t, err, ErrNonEmptyConnection)
	assert.Equal(t, []string{"E1"}, store.connections("1")["2"])
}

func TestRemoveManualConnectionDeletesEmptyEdge(t *testing.T) {
	store := newFakeGraphStore(graphUser("1"), graphUser("2"))
	cs := newTestConnectionService(store)
	ctx := context.Background()

	assert.NoError(t, cs.AddManualConnection(ctx, "1", "2"))
	assert.NoError(t, cs.RemoveManualConnection(ctx, "1", "2"))

	assert.NotContains(t, store.connections("1"), "2")
	// Only the owner's side is severed.
	assert.Contains(t, store.connections("2"), "1")
}

func TestRemoveManualConnectionOverridesCreatorRetention(t *testing.T) {
	creator := graphUser("1")
	created := graphUser("2")
	created.CreatedBy = "1"
	created.Connections["1"] = []string{}
	store := newFakeGraphStore(creator, created)
	cs := newTestConnectionService(store)

	assert.NoError(t, cs.RemoveManualConnection(context.Background(), "2", "1"))
	assert.NotContains(t, store.connections("2"), "1")
}

func TestReindexAllRebuildsFromEventHistory(t *testing.T) {
	corrupted := graphUser("1")
	corrupted.Connections = map[string][]string{"1": {"stale"}, "ghost": {"stale"}}
	store := newFakeGraphStore(corrupted, graphUser("2"), graphUser("3"))
	store.events = []models.Event{
		{EventID: "E1", Attendees: []string{"1", "2"}},
		{EventID: "E2", Attendees: []string{"2", "3"}},
	}
	cs := newTestConnectionService(store)

	assert.NoError(t, cs.ReindexAll(context.Background()))

	assert.Equal(t, map[string][]string{"1": {"E1"}, "2": {"E1"}}, store.connections("1"))
	assert.Equal(t, map[string][]string{"1": {"E1"}, "2": {"E1", "E2"}, "3": {"E2"}}, store.connections("2"))
	assert.Equal(t, map[string][]string{"2": {"E2"}, "3": {"E2"}}, store.connections("3"))
}

func TestReindexAllReseedsCreatorEdges(t *testing.T) {
	creator := graphUser("1")
	created := graphUser("2")
	created.CreatedBy = "1"
	store := newFakeGraphStore(creator, created)
	cs := newTestConnectionService(store)

	assert.NoError(t, cs.ReindexAll(context.Background()))

	assert.Equal(t, map[string][]string{"1": {}, "2": {}}, store.connections("1"))
	assert.Equal(t, map[string][]string{"1": {}, "2": {}}, store.connections("2"))
}
