package handler

import (
	"encoding/json"
	"net/http"
)

// statusResponse is the minimal JSON body every endpoint can fall back to.
type statusResponse struct {
	Status string `json:"status"`
}

// loginResponse is the body of the auth endpoint.
type loginResponse struct {
	Status   string `json:"status"`
	LoggedIn bool   `json:"logged_in"`
	// CSRF delivers the session secret on successful login and password
	// change. Response bodies are unreadable cross-origin, so this is the
	// one safe channel for it.
	CSRF string `json:"csrf,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding a flat response struct cannot fail; ignore the writer error
	// the same way the surrounding handler would have to.
	_ = json.NewEncoder(w).Encode(body)
}

// methodNotAllowed writes the 405 response with the Allow header set.
func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, statusResponse{Status: "Invalid Method"})
}
