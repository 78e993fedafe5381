package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"atlasp_server/services"
)

// RelationshipController handles HTTP requests for connection weighting
type RelationshipController struct {
	RelationshipService *services.RelationshipService
}

// NewRelationshipController creates a new RelationshipController instance
func NewRelationshipController(relationshipService *services.RelationshipService) *RelationshipController {
	return &RelationshipController{RelationshipService: relationshipService}
}

// HandleGetRelationship retrieves a user's weighting preferences
func (rc *RelationshipController) HandleGetRelationship(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	relationship, err := rc.RelationshipService.GetRelationship(context.Background(), request.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(relationship)
}

// HandleUpdateFrequency merges per-connection day counts into the user's
// frequency map. Negative values put the connection on the ignore list.
func (rc *RelationshipController) HandleUpdateFrequency(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID    string         `json:"userId"`
		Frequency map[string]int `json:"frequency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" || len(request.Frequency) == 0 {
		http.Error(w, "userId and frequency are required", http.StatusBadRequest)
		return
	}

	relationship, err := rc.RelationshipService.UpdateFrequency(context.Background(), request.UserID, request.Frequency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(relationship)
}
