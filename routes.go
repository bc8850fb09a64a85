package main

import (
	"log"
	"net/http"

	"trip-planner-server/handlers"
)

func SetupServer(port string) *http.Server {
	mux := http.NewServeMux()

	// setup routes
	mux.HandleFunc("/trips", handlers.HandleTrips)
	mux.HandleFunc("/trips/", handlers.HandleTripResources)

	mux.HandleFunc("/places/search", handlers.HandlePlaceSearch)

	mux.HandleFunc("/resetTestDatabase", handlers.HandleResetTestDatabase)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return server
}

func SetupRoutes(port string) {
	server := SetupServer(port)

	log.Println("Server listening on port " + port)
	err := server.ListenAndServe()
	if err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
