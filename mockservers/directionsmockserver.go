package mockservers

import (
	"fmt"
	"log"
	"net/http"
)

// StartDirectionsApiServer serves a canned Directions API response on port
// 8081. Point DIRECTIONS_API_URL at it in test mode so no real Google Maps
// calls happen.
func StartDirectionsApiServer() {
	http.HandleFunc("/directions", DirectionsApiHandler)

	fmt.Println("Directions API mock server starting on port 8081")

	err := http.ListenAndServe(":8081", nil)
	if err != nil {
		// fatal condition
		log.Fatal("Failed to start Directions API mock server")
	}
}

func DirectionsApiHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("origin") == "" || r.URL.Query().Get("destination") == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "INVALID_REQUEST", "routes": []}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(`{
		"status": "OK",
		"routes": [
			{
				"legs": [
					{
						"distance": {"value": 5200},
						"duration": {"value": 1200}
					}
				],
				"overview_polyline": {"points": "mocked_polyline"}
			}
		]
	}`))
	if err != nil {
		fmt.Println(err)
		http.Error(w, "error while writing the response", http.StatusInternalServerError)
	}
}
