package http_server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
)

const traceIDHeader = "X-Trace-Id"

// accessLog 记录每个请求, 没有 OTel span 时用 request id 作为本地 trace id
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			w.Header().Set(traceIDHeader, sc.TraceID().String())
		} else {
			ctx = logging.ContextWithTraceID(ctx, middleware.GetReqID(ctx))
			w.Header().Set(traceIDHeader, logging.TraceIDFromContext(ctx))
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("dur", time.Since(start)),
		}
		if status >= http.StatusInternalServerError {
			logging.Warn(ctx, "http_access", fields...)
			return
		}
		logging.Info(ctx, "http_access", fields...)
	})
}
