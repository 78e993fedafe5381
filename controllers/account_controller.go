package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"atlasp_server/services"
)

// AccountController handles HTTP requests for premium account status
type AccountController struct {
	AccountService *services.AccountService
}

// NewAccountController creates a new AccountController instance
func NewAccountController(accountService *services.AccountService) *AccountController {
	return &AccountController{AccountService: accountService}
}

// HandleCheckStatus resolves a user's premium status
func (ac *AccountController) HandleCheckStatus(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	status, err := ac.AccountService.CheckAccountStatus(context.Background(), request.UserID, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// HandleUpgrade extends a user's premium window
func (ac *AccountController) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID     string `json:"userId"`
		Expiration string `json:"expiration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId and expiration are required", http.StatusBadRequest)
		return
	}

	expiration, err := time.Parse(time.RFC3339, request.Expiration)
	if err != nil {
		http.Error(w, "expiration must be RFC3339", http.StatusBadRequest)
		return
	}

	status, err := ac.AccountService.UpgradeUser(context.Background(), request.UserID, expiration, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}
