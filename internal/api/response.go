package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	apperrors "smartpark/internal/errors"
	"smartpark/internal/logger"
)

const requestIDHeader = "X-Request-ID"

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain conditions onto HTTP statuses. Anything already an
// HTTPError passes through unchanged.
func writeError(w http.ResponseWriter, err error) {
	httpErr, ok := err.(*apperrors.HTTPError)
	if !ok {
		httpErr = apperrors.FromDomain(err)
	}
	if httpErr.Code >= http.StatusInternalServerError {
		logger.GetLogger().WithComponent("api").WithError(err).Error("request failed")
	}
	writeJSON(w, httpErr.Code, map[string]string{"error": httpErr.Message})
}

// RequestIDMiddleware tags every request with an id, honoring one supplied
// by the caller.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
