package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"halalai/cmd/internal/auth"
)

// Handler wires the HTTP auth endpoints to the auth service.
type Handler struct {
	log  *slog.Logger
	cfg  Config
	auth *auth.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, svc *auth.Service) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("authapi: nil auth service")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, cfg: cfg, auth: svc}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/refresh", h.handleRefresh)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if fieldErrors := validateRegister(req); len(fieldErrors) > 0 {
		writeValidationError(w, r, fieldErrors)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUsername):
			writeError(w, r, http.StatusBadRequest, "username is already taken")
		case errors.Is(err, auth.ErrDuplicateEmail):
			writeError(w, r, http.StatusBadRequest, "email is already registered")
		default:
			h.log.Error("authapi.register.fail", "err", err)
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(res.Token, res.User))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if fieldErrors := validateLogin(req); len(fieldErrors) > 0 {
		writeValidationError(w, r, fieldErrors)
		return
	}

	res, err := h.auth.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		switch {
		// One body for both so a probe cannot tell a wrong password from
		// an unknown account.
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUserNotFound):
			writeError(w, r, http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, auth.ErrAccountDisabled):
			writeError(w, r, http.StatusForbidden, "account is disabled")
		default:
			h.log.Error("authapi.login.fail", "err", err)
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(res.Token, res.User))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, r, http.StatusBadRequest, "token is required")
		return
	}

	res, err := h.auth.Refresh(r.Context(), req.Token)
	if err != nil {
		switch {
		// A token naming an unknown user is indistinguishable from a bad
		// token to the caller.
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
			writeError(w, r, http.StatusUnauthorized, "invalid token")
		case errors.Is(err, auth.ErrAccountDisabled):
			writeError(w, r, http.StatusForbidden, "account is disabled")
		default:
			h.log.Error("authapi.refresh.fail", "err", err)
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(res.Token, res.User))
}
