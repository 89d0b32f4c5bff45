// Package app wires the Halal AI server runtime: config, logging, storage,
// HTTP routes and the chat gateway.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"halalai/cmd/identity"
	"halalai/cmd/internal/auth"
	authapi "halalai/cmd/internal/auth/api"
	"halalai/cmd/internal/auth/token"
	"halalai/cmd/internal/chat"
	"halalai/cmd/internal/verse"
)

// App is the server runtime: it owns the HTTP server wiring and the
// lifecycle of DB-backed resources.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	metrics *Metrics
	tokens  *token.Service

	auth  *authapi.Handler
	chat  *chat.Handler
	verse *verse.Handler
	ws    *chat.WSGateway
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogPretty)
	}

	userStore, verseStore, dbPool, dbEnabled, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	closePoolOnErr := func(err error) (*App, error) {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}

	// Token config is mandatory; a server without a signing secret must
	// not start.
	tokenCfg, err := token.LoadConfigFromEnv()
	if err != nil {
		return closePoolOnErr(err)
	}
	tokens, err := token.NewService(tokenCfg)
	if err != nil {
		return closePoolOnErr(err)
	}

	authSvc, err := auth.NewService(log, userStore, identity.NewHasher(), tokens)
	if err != nil {
		return closePoolOnErr(err)
	}
	authHandler, err := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), authSvc)
	if err != nil {
		return closePoolOnErr(err)
	}

	llmClient, err := chat.NewClient(log, chat.LoadClientConfigFromEnv())
	if err != nil {
		return closePoolOnErr(err)
	}
	chatHandler, err := chat.NewHandler(log, llmClient)
	if err != nil {
		return closePoolOnErr(err)
	}
	wsGateway, err := chat.NewWSGateway(log, llmClient, tokens)
	if err != nil {
		return closePoolOnErr(err)
	}

	verseSvc, err := verse.NewService(log, verseStore)
	if err != nil {
		return closePoolOnErr(err)
	}
	verseHandler, err := verse.NewHandler(log, verseSvc)
	if err != nil {
		return closePoolOnErr(err)
	}

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		metrics:   NewMetrics(),
		tokens:    tokens,
		auth:      authHandler,
		chat:      chatHandler,
		verse:     verseHandler,
		ws:        wsGateway,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.metrics, a.tokens, a.auth, a.chat, a.verse, a.ws)

	handler := WithRequestLogging(WithMetrics(mux, a.metrics), a.log)
	handler = WithRequestID(handler)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 150*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and the in-memory
// dev stores. With a database configured, migrations run before any store
// is handed out.
func newStores(ctx context.Context, cfg Config, log Logger) (identity.Store, verse.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return identity.NewMemoryStore(), verse.NewMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, false, err
	}

	if err := RunMigrations(ctx, log, pool); err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}

	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}
	verses, err := verse.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return users, verses, pool, true, nil
}
