package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"atlasp_server/services"
)

// ReportController handles HTTP requests for digest generation
type ReportController struct {
	ReportService *services.ReportService
}

// NewReportController creates a new ReportController instance
func NewReportController(reportService *services.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// HandleGenerateDigest runs the categorization and recommendation pipeline
// and returns the assembled digest
func (rc *ReportController) HandleGenerateDigest(w http.ResponseWriter, r *http.Request) {
	report, err := rc.ReportService.GenerateDigest(context.Background(), time.Now())
	if err != nil {
		log.Println("Error generating digest:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(report)
}
