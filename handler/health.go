package handler

import (
	"context"
	"net/http"

	"github.com/openmarks/gradebook/pkg/logger"
)

// Liveness reports that the process is up.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{Status: "ALIVE"})
	}
}

// Readiness runs each dependency check in sequence and reports 503 on the
// first failure. With no checks it degenerates into a liveness probe.
func (a *API) Readiness(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				a.log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "Unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "READY"})
	}
}
