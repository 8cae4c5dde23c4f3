package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/banshee-data/orbits/internal/relative"
	"github.com/banshee-data/orbits/internal/trajectory"
)

// writeJSON writes data as a JSON response with the given status code. The
// body is encoded before the header is sent, so a value that cannot be
// encoded becomes a 500 rather than an empty response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logf("failed to encode json response: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logf("failed to write json response: %v", err)
	}
}

// writeJSONError writes {"error": msg} with the given status code.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps loader and transform failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, trajectory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, trajectory.ErrMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, relative.ErrMisalignedTrajectories):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err with the status statusFor picks. Internal errors are
// logged and their text is not sent to the client.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logf("internal error: %v", err)
		msg = "internal server error"
	}
	writeJSONError(w, status, msg)
}
