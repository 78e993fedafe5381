package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"atlasp_server/services"
)

// RecommendationController handles HTTP requests for recommendation history
type RecommendationController struct {
	HistoryService *services.RecommendationHistoryService
	UserService    *services.UserService
	Config         services.ScoringConfig
}

// NewRecommendationController creates a new RecommendationController instance
func NewRecommendationController(historyService *services.RecommendationHistoryService, userService *services.UserService, config services.ScoringConfig) *RecommendationController {
	return &RecommendationController{HistoryService: historyService, UserService: userService, Config: config}
}

// HandleGetPrompt reports whether the user has an unacknowledged
// recommendation, and who it is.
func (rc *RecommendationController) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	pendingID, err := rc.HistoryService.GetPendingRecommendation(context.Background(), request.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if pendingID == "" {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"showPrompt": false})
		return
	}

	recommended, err := rc.UserService.GetUser(context.Background(), pendingID)
	if errors.Is(err, services.ErrItemNotFound) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"showPrompt": false})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"showPrompt":     true,
		"recommendation": recommended,
	})
}

// HandleAcknowledge marks the latest recommendation as seen
func (rc *RecommendationController) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	err := rc.HistoryService.AcknowledgeRecommendation(context.Background(), request.UserID)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "no recommendations for user", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Recommendation acknowledged"})
}

// HandleCheckEligibility reports whether the recommendation cooldown has
// passed for a user
func (rc *RecommendationController) HandleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	record, err := rc.HistoryService.GetRecommendationRecord(context.Background(), request.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	eligible := services.IsEligibleForNewRecommendation(record, time.Now(), rc.Config.RecommendationCooldownDays)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]bool{"eligible": eligible})
}
