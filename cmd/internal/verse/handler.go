package verse

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

type handlerError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// Handler serves the public verse endpoint.
type Handler struct {
	log *slog.Logger
	svc *Service
}

// NewHandler constructs a verse Handler.
func NewHandler(log *slog.Logger, svc *Service) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("verse: nil service")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, svc: svc}, nil
}

// HandleDaily answers GET /api/verse-of-the-day. No authentication; the
// verse is public content.
func (h *Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	v, err := h.svc.VerseOfTheDay(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		msg := "internal error"
		if errors.Is(err, ErrNoVerses) {
			status = http.StatusServiceUnavailable
			msg = "verse data not loaded"
		} else {
			h.log.Error("verse.handle.fail", "err", err)
		}
		h.writeJSON(w, status, handlerError{
			Message:   msg,
			Timestamp: time.Now().UTC(),
			Path:      r.URL.Path,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
