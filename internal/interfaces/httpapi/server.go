package httpapi

import (
	"net/http"

	"github.com/clubpulse/liveblog/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/matches/{matchID}/liveblog", handler.GetLiveBlog)

	mux.Handle("POST /internal/jobs/liveblog/sync",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunLiveBlogSyncJob)))
	mux.Handle("POST /internal/jobs/liveblog/sync/match",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMatchSyncJob)))

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
