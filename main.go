package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"atlasp_server/routes"
	"atlasp_server/services"
	"atlasp_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	s3Service := &services.S3Service{Client: services.InitializeS3Client()}

	// Initialize Services
	userService := &services.UserService{Dynamo: dynamoService}
	eventService := &services.EventService{Dynamo: dynamoService}
	connectionService := &services.ConnectionService{Users: userService, Events: eventService}
	eventService.Connections = connectionService
	relationshipService := &services.RelationshipService{Dynamo: dynamoService}
	accountService := &services.AccountService{Dynamo: dynamoService}
	historyService := &services.RecommendationHistoryService{Dynamo: dynamoService}

	// Initialize the Socket.IO server for recommendation pushes
	socketServer := socket.NewSocketServer()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket.IO server error: %v", err)
		}
	}()
	defer socketServer.Close()

	scoringConfig := services.DefaultScoringConfig()
	reportService := &services.ReportService{
		Users:         userService,
		Events:        eventService,
		Relationships: relationshipService,
		Accounts:      accountService,
		History:       historyService,
		Archive:       s3Service,
		Notifier:      socketServer,
		Config:        scoringConfig,
	}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to AtlasP")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterUserRoutes(r, userService, connectionService)
	routes.RegisterEventRoutes(r, eventService, connectionService)
	routes.RegisterRecommendationRoutes(r, historyService, userService, scoringConfig)
	routes.RegisterRelationshipRoutes(r, relationshipService)
	routes.RegisterAccountRoutes(r, accountService)
	routes.RegisterReportRoutes(r, reportService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
