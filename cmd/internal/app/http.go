package app

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	authapi "halalai/cmd/internal/auth/api"
	"halalai/cmd/internal/auth/token"
	"halalai/cmd/internal/chat"
	"halalai/cmd/internal/verse"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	dbPool *pgxpool.Pool,
	dbEnabled bool,
	metrics *Metrics,
	tokens *token.Service,
	auth *authapi.Handler,
	chatHandler *chat.Handler,
	verseHandler *verse.Handler,
	ws *chat.WSGateway,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireDB && !dbEnabled {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if dbEnabled && dbPool != nil {
			if err := PingDB(r.Context(), dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}

	auth.Register(mux)

	// Chat endpoints require a live token; the verse of the day is public.
	mux.Handle("/api/chat", authapi.RequireAuth(tokens, http.HandlerFunc(chatHandler.HandleChat)))
	mux.Handle("/api/models", authapi.RequireAuth(tokens, http.HandlerFunc(chatHandler.HandleModels)))
	mux.HandleFunc("/api/verse-of-the-day", verseHandler.HandleDaily)

	// The WS gateway authenticates during the upgrade handshake itself.
	mux.HandleFunc("/ws/chat", ws.HandleWS)
}
