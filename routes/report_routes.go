package routes

import (
	"atlasp_server/controllers"
	"atlasp_server/services"

	"github.com/gorilla/mux"
)

// RegisterReportRoutes sets up routes for digest generation under /api/reports
func RegisterReportRoutes(r *mux.Router, reportService *services.ReportService) {
	controller := controllers.NewReportController(reportService)

	reportRouter := r.PathPrefix("/api/reports").Subrouter()

	reportRouter.HandleFunc("/generate", controller.HandleGenerateDigest).Methods("GET")
}
