package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"trip-planner-server/db"
	"trip-planner-server/externals"
	"trip-planner-server/handlers"
	"trip-planner-server/mockservers"
)

func main() {
	// retrieve execution mode
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
	testMode := os.Getenv("TEST_MODE")

	// get port from flag
	port := flag.String("port", "80", "Port on which the server listens")
	flag.Parse()

	// init db
	database, err := db.InitDB(testMode)
	if err != nil || database == nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer func() {
		sqlDB, err := database.DB()
		if err != nil {
			log.Println("Failed to get DB from gorm: ", err)
			return
		}
		err = sqlDB.Close()
		if err != nil {
			return
		}
	}()

	// init apis
	externals.InitGoogleMapsApi()

	// in test mode the directions mock server replaces the live API
	if testMode == "test" {
		go mockservers.StartDirectionsApiServer()
	}

	// wire the shared route service
	handlers.InitRouteService()

	// setup routes
	SetupRoutes(*port)
}
