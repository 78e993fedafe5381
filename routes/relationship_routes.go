package routes

import (
	"atlasp_server/controllers"
	"atlasp_server/services"

	"github.com/gorilla/mux"
)

// RegisterRelationshipRoutes sets up routes for weighting operations under
// /api/relationships
func RegisterRelationshipRoutes(r *mux.Router, relationshipService *services.RelationshipService) {
	controller := controllers.NewRelationshipController(relationshipService)

	relationshipRouter := r.PathPrefix("/api/relationships").Subrouter()

	relationshipRouter.HandleFunc("/all", controller.HandleGetRelationship).Methods("POST")
	relationshipRouter.HandleFunc("/update", controller.HandleUpdateFrequency).Methods("POST")
}
