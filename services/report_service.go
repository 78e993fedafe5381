package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"atlasp_server/models"
	"atlasp_server/utils"
)

// CategorizedUser is one claimed user sorted into the active or inactive
// bucket, carrying everything the scorer needs.
type CategorizedUser struct {
	User                models.User
	SharedEvents        []models.Event
	Relationship        models.Relationship
	IsPremium           bool
	IsInactive          bool
	DaysSinceLastActive int
	Message             string
}

// DigestReport is the assembled periodic digest. Delivery is somebody
// else's job; this is just the content plus the archive location.
type DigestReport struct {
	Subject         string   `json:"subject"`
	EventsBody      string   `json:"eventsBody"`
	PeopleBody      string   `json:"peopleBody"`
	Recommendations []string `json:"recommendations"`
	InactiveNotices []string `json:"inactiveNotices"`
	ArchiveKey      string   `json:"archiveKey,omitempty"`
}

// RecommendationNotifier pushes a freshly generated recommendation to a
// connected client. The socket server implements it.
type RecommendationNotifier interface {
	NotifyRecommendation(userID, recommendedUserID string)
}

// ReportService batches all claimed users into active vs. inactive, runs the
// eligible ones through the scorer, and assembles the digest.
type ReportService struct {
	Users         *UserService
	Events        *EventService
	Relationships *RelationshipService
	Accounts      *AccountService
	History       *RecommendationHistoryService
	Archive       *S3Service             // optional
	Notifier      RecommendationNotifier // optional
	Config        ScoringConfig
}

// CategorizeUsers classifies every claimed user by how recently they were
// active: the smaller of days-since-their-latest-event-date and
// days-since-their-latest-event-creation, against the inactivity threshold.
// Users with no attended events at all are skipped. Active users get their
// relationship and premium data attached for scoring.
func (rs *ReportService) CategorizeUsers(ctx context.Context, now time.Time) ([]CategorizedUser, error) {
	claimedUsers, err := rs.Users.GetClaimedUsers(ctx)
	if err != nil {
		return nil, err
	}

	eventsByID, err := rs.fetchAttendedEvents(ctx, claimedUsers)
	if err != nil {
		return nil, err
	}

	var categorized []CategorizedUser
	var activeIDs []string
	for _, user := range claimedUsers {
		sharedEvents := resolveEvents(user.SelfEvents(), eventsByID)
		if len(sharedEvents) == 0 {
			continue
		}

		days := minimumDaysSince(sharedEvents, now)
		entry := CategorizedUser{
			User:                user,
			SharedEvents:        sharedEvents,
			IsInactive:          days > rs.Config.InactiveThresholdDays,
			DaysSinceLastActive: days,
			Message:             fmt.Sprintf("%s,%d days,+1%s", user.Name, days, user.PhoneNumber),
		}
		categorized = append(categorized, entry)
		if !entry.IsInactive {
			activeIDs = append(activeIDs, user.UserID)
		}
	}

	relationships, err := rs.Relationships.GetManyRelationships(ctx, activeIDs)
	if err != nil {
		return nil, err
	}
	accounts, err := rs.Accounts.GetManyAccounts(ctx, activeIDs)
	if err != nil {
		return nil, err
	}

	for i := range categorized {
		if categorized[i].IsInactive {
			continue
		}
		userID := categorized[i].User.UserID
		categorized[i].Relationship = relationships[userID]
		if account, ok := accounts[userID]; ok {
			categorized[i].IsPremium = account.IsPremium(now)
		}
	}

	return categorized, nil
}

// GenerateRecommendations runs the recommendation pass: active users past
// their recommendation cooldown are scored, results are written to history,
// pushed to connected clients, and rendered as digest lines.
func (rs *ReportService) GenerateRecommendations(ctx context.Context, now time.Time) (recommendationLines, inactiveNotices []string, err error) {
	categorized, err := rs.CategorizeUsers(ctx, now)
	if err != nil {
		return nil, nil, err
	}

	var activeUsers []CategorizedUser
	var activeIDs []string
	for _, entry := range categorized {
		if entry.IsInactive {
			inactiveNotices = append(inactiveNotices, entry.Message)
			continue
		}
		activeUsers = append(activeUsers, entry)
		activeIDs = append(activeIDs, entry.User.UserID)
	}

	priorRecords, err := rs.History.GetManyRecommendationRecords(ctx, activeIDs)
	if err != nil {
		return nil, nil, err
	}

	var eligible []CategorizedUser
	for _, entry := range activeUsers {
		prior, hasPrior := priorRecords[entry.User.UserID]
		priorRef := &prior
		if !hasPrior {
			priorRef = nil
		}
		if IsEligibleForNewRecommendation(priorRef, now, rs.Config.RecommendationCooldownDays) {
			eligible = append(eligible, entry)
		}
	}

	createdAt, err := rs.fetchCounterpartCreationTimes(ctx, eligible)
	if err != nil {
		return nil, nil, err
	}

	type generated struct {
		activeUser     models.User
		recommendation Recommendation
	}
	var results []generated
	var recommendedIDs []string
	for _, entry := range eligible {
		prior, hasPrior := priorRecords[entry.User.UserID]
		priorRef := &prior
		if !hasPrior {
			priorRef = nil
		}

		recommendation := Recommend(ScoringInput{
			ActiveUser:    entry.User,
			EventsByID:    eventMap(entry.SharedEvents),
			UserCreatedAt: createdAt,
			Relationship:  entry.Relationship,
			IsPremium:     entry.IsPremium,
			Prior:         priorRef,
			Now:           now,
		}, rs.Config)

		if _, err := rs.History.WriteRecommendation(ctx, entry.User.UserID, recommendation.UserID, now); err != nil {
			return nil, nil, err
		}
		if rs.Notifier != nil && recommendation.Kind != RecommendationAddFriend {
			rs.Notifier.NotifyRecommendation(entry.User.UserID, recommendation.UserID)
		}

		results = append(results, generated{activeUser: entry.User, recommendation: recommendation})
		recommendedIDs = append(recommendedIDs, recommendation.UserID)
	}

	recommendedUsers, err := rs.Users.GetManyUsers(ctx, dedupe(recommendedIDs))
	if err != nil {
		return nil, nil, err
	}
	recommendedByID := map[string]models.User{}
	for _, user := range recommendedUsers {
		recommendedByID[user.UserID] = user
	}

	for _, result := range results {
		recommendationLines = append(recommendationLines,
			recommendationLine(result.activeUser, recommendedByID[result.recommendation.UserID], result.recommendation))
	}

	log.Printf("Generated %d recommendations, %d inactive notices", len(recommendationLines), len(inactiveNotices))
	return recommendationLines, inactiveNotices, nil
}

// GenerateDigest builds the full periodic digest and archives it.
func (rs *ReportService) GenerateDigest(ctx context.Context, now time.Time) (*DigestReport, error) {
	recommendationLines, inactiveNotices, err := rs.GenerateRecommendations(ctx, now)
	if err != nil {
		return nil, err
	}

	allEvents, err := rs.Events.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	allUsers, err := rs.Users.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	usersByID := map[string]models.User{}
	for _, user := range allUsers {
		usersByID[user.UserID] = user
	}

	recentEvents := eventsCreatedSince(allEvents, utils.IncrementDate(now, -1))
	upcomingEvents := eventsBetween(allEvents, utils.IncrementDate(now, 2), utils.IncrementDate(now, 3))

	report := &DigestReport{
		Subject:         digestSubject(now),
		EventsBody:      eventsMailBody(recentEvents, upcomingEvents, usersByID),
		PeopleBody:      peopleMailBody(recommendationLines, inactiveNotices),
		Recommendations: recommendationLines,
		InactiveNotices: inactiveNotices,
	}

	if rs.Archive != nil {
		body := "<div><b>Events</b><br />" + report.EventsBody + "<br /><br /><b>People</b><br />" + report.PeopleBody + "</div>"
		key, err := rs.Archive.UploadReport(ctx, "digest.html", "text/html", []byte(body))
		if err != nil {
			log.Printf("Failed to archive digest: %v", err)
		} else {
			report.ArchiveKey = key
		}
	}

	return report, nil
}

func (rs *ReportService) fetchAttendedEvents(ctx context.Context, users []models.User) (map[string]models.Event, error) {
	var eventIDs []string
	for _, user := range users {
		eventIDs = append(eventIDs, user.SelfEvents()...)
	}

	events, err := rs.Events.GetManyEvents(ctx, dedupe(eventIDs))
	if err != nil {
		return nil, err
	}
	return eventMap(events), nil
}

// fetchCounterpartCreationTimes resolves creation timestamps for every
// connection counterpart of the users about to be scored, for the
// oldest-first new-friend tie-break.
func (rs *ReportService) fetchCounterpartCreationTimes(ctx context.Context, entries []CategorizedUser) (map[string]time.Time, error) {
	var counterpartIDs []string
	for _, entry := range entries {
		for otherID := range entry.User.Connections {
			if otherID != entry.User.UserID {
				counterpartIDs = append(counterpartIDs, otherID)
			}
		}
	}

	counterparts, err := rs.Users.GetManyUsers(ctx, dedupe(counterpartIDs))
	if err != nil {
		return nil, err
	}

	createdAt := make(map[string]time.Time, len(counterparts))
	for _, user := range counterparts {
		createdAt[user.UserID] = user.CreatedAt
	}
	return createdAt, nil
}

func resolveEvents(eventIDs []string, eventsByID map[string]models.Event) []models.Event {
	var events []models.Event
	for _, id := range eventIDs {
		if event, ok := eventsByID[id]; ok {
			events = append(events, event)
		}
	}
	return events
}

func eventMap(events []models.Event) map[string]models.Event {
	byID := make(map[string]models.Event, len(events))
	for _, event := range events {
		byID[event.EventID] = event
	}
	return byID
}

// minimumDaysSince measures how recently a user was active: the latest event
// they attended counts from either its date or its creation time, whichever
// is more recent.
func minimumDaysSince(events []models.Event, now time.Time) int {
	var latestDate, latestCreated time.Time
	for _, event := range events {
		if event.Date.After(latestDate) {
			latestDate = event.Date
		}
		if event.CreatedAt.After(latestCreated) {
			latestCreated = event.CreatedAt
		}
	}

	daysSinceDate := utils.DaysSince(now, latestDate)
	daysSinceCreated := utils.DaysSince(now, latestCreated)
	if daysSinceCreated < daysSinceDate {
		return daysSinceCreated
	}
	return daysSinceDate
}

func recommendationLine(activeUser, recommendedUser models.User, recommendation Recommendation) string {
	phone := recommendedUser.PhoneNumber
	if phone == "" {
		phone = "NO NUMBER"
	}
	return fmt.Sprintf("%s,%s,should see,%s,%s,%s",
		activeUser.Name, activeUser.PhoneNumber, recommendedUser.Name, phone, scoreLabel(recommendation))
}

func scoreLabel(recommendation Recommendation) string {
	switch recommendation.Kind {
	case RecommendationNewFriend:
		return "New Friend"
	case RecommendationAddFriend:
		return "Add a new friend"
	default:
		return fmt.Sprintf("%.2f", recommendation.Score)
	}
}

func eventsCreatedSince(events []models.Event, since time.Time) []models.Event {
	var matched []models.Event
	for _, event := range events {
		if !event.CreatedAt.Before(since) {
			matched = append(matched, event)
		}
	}
	sortEventsByDate(matched)
	return matched
}

func eventsBetween(events []models.Event, from, to time.Time) []models.Event {
	var matched []models.Event
	for _, event := range events {
		if !event.Date.Before(from) && !event.Date.After(to) {
			matched = append(matched, event)
		}
	}
	sortEventsByDate(matched)
	return matched
}

func sortEventsByDate(events []models.Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

func eventsMailBody(recentEvents, upcomingEvents []models.Event, usersByID map[string]models.User) string {
	var builder strings.Builder
	builder.WriteString("<div><b>Events created in the last 24 hours:</b>")
	for _, event := range recentEvents {
		builder.WriteString(eventLine(event, usersByID))
	}
	builder.WriteString("<br /><b>Events happening in 2 days:</b>")
	for _, event := range upcomingEvents {
		builder.WriteString(eventLine(event, usersByID))
	}
	builder.WriteString("</div>")
	return builder.String()
}

func eventLine(event models.Event, usersByID map[string]models.User) string {
	names := make([]string, 0, len(event.Attendees))
	for _, id := range event.Attendees {
		names = append(names, usersByID[id].Name)
	}
	return fmt.Sprintf("<div>%s,%s,%s,%s</div>",
		event.Description, event.Date.Format("2006-01-02"), event.EventID, strings.Join(names, ","))
}

func peopleMailBody(recommendationLines, inactiveNotices []string) string {
	return "<div><b>Recommendations:</b><div>" + strings.Join(recommendationLines, "<br />") +
		"</div><br /><b>Inactive users:</b><div>" + strings.Join(inactiveNotices, "<br />") + "</div></div>"
}

func digestSubject(now time.Time) string {
	return fmt.Sprintf("AtlasP Text Report - %s", now.Format("1/2/2006"))
}
