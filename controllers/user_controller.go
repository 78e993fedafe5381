package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"atlasp_server/models"
	"atlasp_server/services"
)

// UserController handles HTTP requests for users and their connection graph
type UserController struct {
	UserService       *services.UserService
	ConnectionService *services.ConnectionService
}

// NewUserController creates a new UserController instance
func NewUserController(userService *services.UserService, connectionService *services.ConnectionService) *UserController {
	return &UserController{UserService: userService, ConnectionService: connectionService}
}

// HandleCreateUser creates a new user. When createdBy is set the new user is
// being invited into the graph by an existing one, so both sides get a
// placeholder connection.
func (uc *UserController) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phoneNumber"`
		Gender      string `json:"gender"`
		Location    string `json:"location"`
		Age         int    `json:"age"`
		CreatedBy   string `json:"createdBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	user, err := uc.UserService.CreateUser(context.Background(), models.User{
		Name:        request.Name,
		PhoneNumber: request.PhoneNumber,
		Gender:      request.Gender,
		Location:    request.Location,
		Age:         request.Age,
	}, request.CreatedBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if request.CreatedBy != "" {
		if err := uc.ConnectionService.AddManualConnection(context.Background(), request.CreatedBy, user.UserID); err != nil {
			log.Println("Failed to link creator connection:", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(user)
}

// HandleClaimUser activates the account behind a phone number
func (uc *UserController) HandleClaimUser(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.PhoneNumber == "" {
		http.Error(w, "phoneNumber is required", http.StatusBadRequest)
		return
	}

	user, err := uc.UserService.ClaimUser(context.Background(), request.PhoneNumber)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(user)
}

// HandleGetUser retrieves a single user
func (uc *UserController) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	user, err := uc.UserService.GetUser(context.Background(), request.UserID)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(user)
}

// HandleGetManyUsers retrieves a batch of users
func (uc *UserController) HandleGetManyUsers(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserIDs []string `json:"userIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || len(request.UserIDs) == 0 {
		http.Error(w, "userIds is required", http.StatusBadRequest)
		return
	}

	users, err := uc.UserService.GetManyUsers(context.Background(), request.UserIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(users)
}

// HandleAddConnection links two users with a zero-event edge
func (uc *UserController) HandleAddConnection(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID      string `json:"userId"`
		OtherUserID string `json:"otherUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" || request.OtherUserID == "" {
		http.Error(w, "userId and otherUserId are required", http.StatusBadRequest)
		return
	}

	if err := uc.ConnectionService.AddManualConnection(context.Background(), request.UserID, request.OtherUserID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Connection added"})
}

// HandleRemoveConnection severs a zero-event connection
func (uc *UserController) HandleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID           string `json:"userId"`
		RemoveConnection string `json:"removeConnection"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" || request.RemoveConnection == "" {
		http.Error(w, "userId and removeConnection are required", http.StatusBadRequest)
		return
	}

	err := uc.ConnectionService.RemoveManualConnection(context.Background(), request.UserID, request.RemoveConnection)
	if errors.Is(err, services.ErrNonEmptyConnection) {
		http.Error(w, "We can only remove someone who has not attended any events with you.", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Connection removed"})
}
