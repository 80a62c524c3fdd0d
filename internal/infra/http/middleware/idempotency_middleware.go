package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	IdempotencyTTL    = 24 * time.Hour

	// IdempotencyLockTTL bounds how long a crashed request can hold a key; it outlives the router timeout.
	IdempotencyLockTTL = 2 * time.Minute
)

// responseRecorder copies what the handler writes so it can be replayed later.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key. Keys are
// scoped by method and path. While the first request is still running, repeats get 409.
// 5xx responses are not stored so the client may retry.
func Idempotency(store gateway.IdempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(IdempotencyHeader)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := r.Method + ":" + r.URL.Path + ":" + header

			// 1. Already answered: replay.
			cached, err := store.Get(ctx, key)
			if err != nil {
				// Fail open: an unavailable store must not block admissions.
				log.Error().Err(err).Msg("failed to read idempotency key")
				next.ServeHTTP(w, r)
				return
			}
			if cached != nil {
				replay(w, header, cached)
				return
			}

			// 2. Claim the key. Only the holder runs the handler.
			reserved, err := store.Reserve(ctx, key, IdempotencyLockTTL)
			if err != nil {
				log.Error().Err(err).Msg("failed to reserve idempotency key")
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				log.Info().Str("key", header).Msg("idempotency key in flight")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				if _, err := w.Write([]byte(`{"error":"a request with this Idempotency-Key is still in progress"}` + "\n")); err != nil {
					log.Error().Err(err).Msg("failed to write conflict response")
				}
				return
			}
			defer func() {
				if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
					log.Error().Err(err).Msg("failed to release idempotency key")
				}
			}()

			// 3. A request that finished between Get and Reserve has already saved its answer.
			cached, err = store.Get(ctx, key)
			if err == nil && cached != nil {
				replay(w, header, cached)
				return
			}

			recorder := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(recorder, r)

			if recorder.statusCode >= 500 {
				return
			}
			response := gateway.CachedResponse{
				StatusCode: recorder.statusCode,
				Body:       recorder.body.Bytes(),
				Headers:    map[string][]string{"Content-Type": w.Header().Values("Content-Type")},
			}
			// Saved before the deferred Release, so no gap lets a retry through.
			if err := store.Save(context.WithoutCancel(ctx), key, response, IdempotencyTTL); err != nil {
				log.Error().Err(err).Msg("failed to save idempotency key")
			}
		})
	}
}

func replay(w http.ResponseWriter, header string, cached *gateway.CachedResponse) {
	log.Info().Str("key", header).Msg("idempotency cache hit")
	for name, values := range cached.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set("X-Idempotency-Hit", "true")
	w.WriteHeader(cached.StatusCode)
	if _, err := w.Write(cached.Body); err != nil {
		log.Error().Err(err).Msg("failed to write cached response")
	}
}
