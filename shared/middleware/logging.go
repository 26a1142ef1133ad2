package middleware

import (
	"net/http"
	"time"

	"github.com/agora-forum/agora/shared/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tomasen/realip"
)

// Logging writes one structured line per request. The matched route pattern
// is logged instead of the path so user ids stay out of the log.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		attrs := []any{
			"method", r.Method,
			"route", routePattern(r),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"ip", realip.FromRequest(r),
		}
		if reqId := chimw.GetReqID(r.Context()); reqId != "" {
			attrs = append(attrs, "request_id", reqId)
		}

		if status >= http.StatusInternalServerError {
			logger.Log.Warn("request", attrs...)
			return
		}
		logger.Log.Info("request", attrs...)
	})
}

// routePattern is filled in by chi once routing is done.
func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
