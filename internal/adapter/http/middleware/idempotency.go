package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/computeledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks responses served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	inFlightMarker = "processing"
)

// storedResponse is what gets cached under an idempotency key.
type storedResponse struct {
	Body   []byte `json:"body"`
	Status int    `json:"status"`
}

// IdempotencyMiddleware replays recorded responses for repeated Idempotency-Key requests.
type IdempotencyMiddleware struct {
	store    usecase.IdempotencyStore
	ttl      time.Duration
	onReplay func()
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. onReplay may be nil.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, onReplay func()) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	if onReplay == nil {
		onReplay = func() {}
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, onReplay: onReplay}
}

// Wrap wraps an http.Handler with idempotency checking.
// Responses below 500 are recorded, since a rejected debit is a committed outcome.
// Server errors release the key so the caller can retry.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		logger := zerolog.Ctx(r.Context())

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			logger.Error().Err(err).Str("idempotency_key", key).Msg("idempotency check failed")
			writeError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			m.replay(w, key, cached, logger)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}

		// The request context may already be cancelled by the time the response is written.
		ctx := context.WithoutCancel(r.Context())

		// A panicking handler never finishes the request, so free the key before
		// the panic reaches Recovery.
		defer func() {
			if p := recover(); p != nil {
				m.release(ctx, key, logger)
				panic(p)
			}
		}()

		next.ServeHTTP(recorder, r)

		if recorder.statusCode >= http.StatusInternalServerError {
			m.release(ctx, key, logger)
			return
		}

		payload, err := json.Marshal(storedResponse{Status: recorder.statusCode, Body: recorder.body.Bytes()})
		if err == nil {
			err = m.store.Update(ctx, key, payload, m.ttl)
		}
		if err != nil {
			logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to record idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) release(ctx context.Context, key string, logger *zerolog.Logger) {
	if err := m.store.Release(ctx, key); err != nil {
		logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, key string, cached []byte, logger *zerolog.Logger) {
	if cached == nil || string(cached) == inFlightMarker {
		writeError(w, http.StatusConflict, "request with this idempotency key is in progress")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal(cached, &stored); err != nil || stored.Status == 0 {
		logger.Error().Err(err).Str("idempotency_key", key).Msg("corrupt idempotency record")
		writeError(w, http.StatusInternalServerError, "idempotency check failed")
		return
	}

	m.onReplay()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(stored.Status)
	w.Write(stored.Body)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
