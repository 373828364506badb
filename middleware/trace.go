package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Trace starts a server span per request, continuing any propagated trace.
// Spans are named after the matched route template, never the raw path, so
// ids in the URL do not multiply span names.
func Trace(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := otel.Tracer(service)
		r := c.Request

		attrs := []attribute.KeyValue{
			semconv.HTTPMethodKey.String(r.Method),
			semconv.HTTPTargetKey.String(r.URL.Path),
			semconv.NetHostNameKey.String(r.Host),
		}
		name := r.Method
		if route := c.FullPath(); route != "" {
			name += " " + route
			attrs = append(attrs, semconv.HTTPRouteKey.String(route))
		}

		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		c.Request = r.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
