package routes

import (
	"atlasp_server/controllers"
	"atlasp_server/services"

	"github.com/gorilla/mux"
)

// RegisterEventRoutes sets up routes for event operations under /api/events
func RegisterEventRoutes(r *mux.Router, eventService *services.EventService, connectionService *services.ConnectionService) {
	controller := controllers.NewEventController(eventService, connectionService)

	eventRouter := r.PathPrefix("/api/events").Subrouter()

	eventRouter.HandleFunc("/new", controller.HandleCreateEvent).Methods("POST")
	eventRouter.HandleFunc("/update", controller.HandleUpdateEvent).Methods("PUT")
	eventRouter.HandleFunc("/delete", controller.HandleDeleteEvent).Methods("POST")
	eventRouter.HandleFunc("/getOne", controller.HandleGetEvent).Methods("POST")
	eventRouter.HandleFunc("/reindex", controller.HandleReindex).Methods("POST")
}
