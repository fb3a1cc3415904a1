// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"
)

// PingHandler is a trivial liveness check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// ListRoomsHandler returns the in-memory room summaries for debugging.
func ListRoomsHandler(gw *SessionGateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gw.RoomSummaries())
	}
}
