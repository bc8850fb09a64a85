package handlers

import (
	"log"
	"net/http"
	"strconv"
)

type PlaceSearchResponse struct {
	Results interface{} `json:"results"`
}

// HandlePlaceSearch proxies the Places text search so the API key stays on
// the server.
func HandlePlaceSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		log.Println("Method not supported")
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		log.Println("Missing query")
		http.Error(w, "Missing query", http.StatusBadRequest)
		return
	}

	location := ""
	lat := r.URL.Query().Get("lat")
	lng := r.URL.Query().Get("lng")
	if lat != "" && lng != "" {
		location = lat + "," + lng
	}

	radius := 0
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		parsed, err := strconv.Atoi(radiusStr)
		if err != nil {
			log.Println("Wrong radius: ", err)
			http.Error(w, "Wrong radius", http.StatusBadRequest)
			return
		}
		radius = parsed
	}

	results, err := routeService.SearchPlaces(query, location, radius)
	if err != nil {
		log.Println("Place search failed: ", err)
		http.Error(w, "Place search failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, PlaceSearchResponse{Results: results})
}
