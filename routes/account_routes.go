package routes

import (
	"atlasp_server/controllers"
	"atlasp_server/services"

	"github.com/gorilla/mux"
)

// RegisterAccountRoutes sets up routes for premium status under /api/account
func RegisterAccountRoutes(r *mux.Router, accountService *services.AccountService) {
	controller := controllers.NewAccountController(accountService)

	accountRouter := r.PathPrefix("/api/account").Subrouter()

	accountRouter.HandleFunc("/status", controller.HandleCheckStatus).Methods("POST")
	accountRouter.HandleFunc("/upgrade", controller.HandleUpgrade).Methods("POST")
}
