package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Trace starts a server span per request tagged with the chi request id, so
// operational logs written while serving it carry trace and span ids.
func Trace(next http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/jcmexdev/statesaga/internal/httpx")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("request_id", middleware.GetReqID(r.Context())),
			))
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
