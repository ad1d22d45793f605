package server

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

const (
	msgNotFound      = "Not Found"
	msgInvalidJSON   = "Invalid JSON"
	msgTooLarge      = "Request Entity Too Large"
	msgInternalError = "Internal Server Error"
	msgTimeout       = "forecast timed out"
)

// writeJSON encodes the full body before writing any header so an encoding failure can still
// be reported as a 500
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("unable to encode response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: msgInternalError})
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("unable to write response", "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
