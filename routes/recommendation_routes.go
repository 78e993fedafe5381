package routes

import (
	"atlasp_server/controllers"
	"atlasp_server/services"

	"github.com/gorilla/mux"
)

// RegisterRecommendationRoutes sets up routes for recommendation history
// operations under /api/recommendations
func RegisterRecommendationRoutes(r *mux.Router, historyService *services.RecommendationHistoryService, userService *services.UserService, config services.ScoringConfig) {
	controller := controllers.NewRecommendationController(historyService, userService, config)

	recommendationRouter := r.PathPrefix("/api/recommendations").Subrouter()

	recommendationRouter.HandleFunc("/prompt", controller.HandleGetPrompt).Methods("POST")
	recommendationRouter.HandleFunc("/acknowledge", controller.HandleAcknowledge).Methods("POST")
	recommendationRouter.HandleFunc("/eligibility", controller.HandleCheckEligibility).Methods("POST")
}
