package authapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

type errorResponse struct {
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Path      string            `json:"path"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Message:   msg,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Message:   "validation failed",
		Errors:    fieldErrors,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
