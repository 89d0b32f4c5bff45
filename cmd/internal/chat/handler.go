package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const defaultMaxBodyBytes = 1 << 20 // 1 MiB

type chatRequest struct {
	Messages    []Message `json:"messages"`
	APIKey      string    `json:"api_key"`
	RemoteModel string    `json:"remote_model"`
	MaxTokens   int       `json:"max_tokens"`
}

type handlerError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// Handler serves the request/response chat endpoints. Routes are expected
// to be mounted behind bearer-token middleware.
type Handler struct {
	log          *slog.Logger
	client       *Client
	maxBodyBytes int64
}

// NewHandler constructs a chat Handler.
func NewHandler(log *slog.Logger, client *Client) (*Handler, error) {
	if client == nil {
		return nil, errors.New("chat: nil client")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, client: client, maxBodyBytes: defaultMaxBodyBytes}, nil
}

// HandleChat answers POST /api/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "messages must not be empty")
		return
	}

	out, err := h.client.Complete(r.Context(), CompleteInput{
		Messages:    req.Messages,
		APIKey:      req.APIKey,
		RemoteModel: req.RemoteModel,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoMessages):
			h.writeError(w, r, http.StatusBadRequest, "messages must not be empty")
		case errors.Is(err, ErrUnavailable):
			h.writeError(w, r, http.StatusServiceUnavailable, "llm service not ready")
		default:
			h.log.Error("chat.handle.fail", "err", err)
			h.writeError(w, r, http.StatusBadGateway, "llm service error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, out)
}

// HandleModels answers GET /api/models.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	out, err := h.client.Models(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrUnavailable):
			h.writeError(w, r, http.StatusServiceUnavailable, "llm service not ready")
		default:
			h.log.Error("chat.models.fail", "err", err)
			h.writeError(w, r, http.StatusBadGateway, "llm service error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, status, handlerError{
		Message:   msg,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}
