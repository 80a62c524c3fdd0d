package handler

import (
	"net/http"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	internalMiddleware "github.com/LuanMakohin/api-simples/internal/infra/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type RouterConfig struct {
	Transfers   *TransferHandler
	Deposits    *DepositHandler
	Users       *UserHandler
	Idempotency gateway.IdempotencyRepository
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	idempotent := func(h http.HandlerFunc) http.Handler { return http.HandlerFunc(h) }
	if cfg.Idempotency != nil {
		mw := internalMiddleware.Idempotency(cfg.Idempotency)
		idempotent = func(h http.HandlerFunc) http.Handler { return mw(h) }
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	router.Route("/transfer", func(r chi.Router) {
		r.Method(http.MethodPost, "/", idempotent(cfg.Transfers.Create))
		r.Get("/", cfg.Transfers.List)
		r.Get("/lasts", cfg.Transfers.Lasts)
		r.Get("/{id}", cfg.Transfers.Get)
		r.Put("/{id}", cfg.Transfers.Update)
		r.Delete("/{id}", cfg.Transfers.Delete)
	})
	router.Route("/deposit", func(r chi.Router) {
		r.Method(http.MethodPost, "/", idempotent(cfg.Deposits.Create))
		r.Get("/", cfg.Deposits.List)
		r.Get("/lasts", cfg.Deposits.Lasts)
		r.Get("/{id}", cfg.Deposits.Get)
		r.Put("/{id}", cfg.Deposits.Update)
		r.Delete("/{id}", cfg.Deposits.Delete)
	})
	router.Route("/user", func(r chi.Router) {
		r.Method(http.MethodPost, "/", idempotent(cfg.Users.Create))
		r.Get("/", cfg.Users.List)
		r.Get("/{id}", cfg.Users.Get)
		r.Put("/{id}", cfg.Users.Update)
		r.Delete("/{id}", cfg.Users.Delete)
	})
	return router
}
