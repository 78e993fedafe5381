package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"atlasp_server/models"
	"atlasp_server/services"
)

// EventController handles HTTP requests for events
type EventController struct {
	EventService      *services.EventService
	ConnectionService *services.ConnectionService
}

// NewEventController creates a new EventController instance
func NewEventController(eventService *services.EventService, connectionService *services.ConnectionService) *EventController {
	return &EventController{EventService: eventService, ConnectionService: connectionService}
}

type eventRequest struct {
	EventID     string   `json:"eventId"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Host        string   `json:"host"`
	Attendees   []string `json:"attendees"`
}

func (er eventRequest) toEvent() (models.Event, error) {
	date, err := time.Parse(time.RFC3339, er.Date)
	if err != nil {
		return models.Event{}, err
	}
	return models.Event{
		EventID:     er.EventID,
		Date:        date,
		Description: er.Description,
		Host:        er.Host,
		Attendees:   er.Attendees,
	}, nil
}

// HandleCreateEvent creates an event and indexes its attendees
func (ec *EventController) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var request eventRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(request.Attendees) < 2 {
		http.Error(w, "an event needs at least two attendees", http.StatusBadRequest)
		return
	}

	event, err := request.toEvent()
	if err != nil {
		http.Error(w, "date must be RFC3339", http.StatusBadRequest)
		return
	}

	created, err := ec.EventService.CreateEvent(context.Background(), event)
	if err != nil {
		log.Println("Error creating event:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(created)
}

// HandleUpdateEvent replaces an event and reindexes the attendee delta
func (ec *EventController) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var request eventRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.EventID == "" {
		http.Error(w, "eventId is required", http.StatusBadRequest)
		return
	}
	if len(request.Attendees) < 2 {
		http.Error(w, "an event needs at least two attendees", http.StatusBadRequest)
		return
	}

	event, err := request.toEvent()
	if err != nil {
		http.Error(w, "date must be RFC3339", http.StatusBadRequest)
		return
	}

	updated, err := ec.EventService.UpdateEvent(context.Background(), request.EventID, event)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Println("Error updating event:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// HandleDeleteEvent deletes an event and unindexes it
func (ec *EventController) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	var request struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.EventID == "" {
		http.Error(w, "eventId is required", http.StatusBadRequest)
		return
	}

	err := ec.EventService.DeleteEvent(context.Background(), request.EventID)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Event deleted"})
}

// HandleGetEvent retrieves an event by id
func (ec *EventController) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	var request struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.EventID == "" {
		http.Error(w, "eventId is required", http.StatusBadRequest)
		return
	}

	event, err := ec.EventService.GetEvent(context.Background(), request.EventID)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(event)
}

// HandleReindex rebuilds the entire connection graph from the event history
func (ec *EventController) HandleReindex(w http.ResponseWriter, r *http.Request) {
	if err := ec.ConnectionService.ReindexAll(context.Background()); err != nil {
		log.Println("Reindex failed:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Successfully reindexed connections"})
}
