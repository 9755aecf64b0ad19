package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-crm/internal/core/apiresponse"
	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RequestIDHeader は相関 ID を運ぶヘッダーです。
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging は相関 ID とリクエスト単位のロガーをコンテキストに設定し、完了時にアクセスログを出力します。
func Logging(next http.Handler, base zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := base.With().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		ctx := logger.WithContext(shared.WithCorrelationID(r.Context(), id))

		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info().
			Int("status", rec.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("http request")
	})
}

// RateLimit はプロセス全体で rps を超えるリクエストを 429 で拒否します。
func RateLimit(next http.Handler, rps float64, burst int) http.Handler {
	if burst <= 0 {
		burst = int(rps) + 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			zerolog.Ctx(r.Context()).Warn().Msg("rate limit exceeded")
			writeResponse(w, r, apiresponse.Error(http.StatusTooManyRequests, "Too many requests", validation.FieldError{
				Field:   "Request",
				Message: "rate limit exceeded",
			}))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	})
}
