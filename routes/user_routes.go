package routes

import (
	"atlasp_server/controllers"
	"atlasp_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserRoutes sets up routes for user operations under /api/users
func RegisterUserRoutes(r *mux.Router, userService *services.UserService, connectionService *services.ConnectionService) {
	controller := controllers.NewUserController(userService, connectionService)

	userRouter := r.PathPrefix("/api/users").Subrouter()

	userRouter.HandleFunc("/new", controller.HandleCreateUser).Methods("POST")
	userRouter.HandleFunc("/claim", controller.HandleClaimUser).Methods("POST")
	userRouter.HandleFunc("/getOne", controller.HandleGetUser).Methods("POST")
	userRouter.HandleFunc("/getMany", controller.HandleGetManyUsers).Methods("POST")
	userRouter.HandleFunc("/add-connection", controller.HandleAddConnection).Methods("POST")
	userRouter.HandleFunc("/remove-connection", controller.HandleRemoveConnection).Methods("POST")
}
