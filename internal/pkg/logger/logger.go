// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Init 配置全局 zerolog，所有日志都会带上 service 字段
func Init(serviceName, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zlog.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()
}

// Ctx 取出 context 中的 logger；没有注入时退回全局 logger，并尽量补上 trace_id。
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	traceID := GetTraceID(ctx)
	if traceID == "" {
		return &zlog.Logger
	}
	child := zlog.With().Str("trace_id", traceID).Logger()
	return &child
}

// GetTraceID 从 context 中的 span 取出 trace_id
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// HTTPMiddleware 先提取上游的 trace 上下文，再把带 trace_id 的 logger 放入 context
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		l := zlog.With().Str("path", r.URL.Path)
		if traceID := GetTraceID(ctx); traceID != "" {
			l = l.Str("trace_id", traceID)
		}
		reqLogger := l.Logger()
		ctx = reqLogger.WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
