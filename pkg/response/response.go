// Package response writes the JSON error bodies middleware returns before a
// request reaches a handler:
//
//	{"message": "..."}
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Message: message})
}

// Unauthorized sends the 401 returned to requests without a valid token.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthenticated.")
}

// TooManyRequests sends a 429.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too Many Attempts.")
}
