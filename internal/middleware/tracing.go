package middleware

import (
	"duskblog/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request, continuing any
// trace context carried in the incoming headers. The trace id is echoed
// in the X-Trace-ID response header and stored in a local for the
// request logger.
func TracingMiddleware() fiber.Handler {
	propagator := otel.GetTextMapPropagator()
	return func(c *fiber.Ctx) error {
		ctx := propagator.Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.route", c.Path()),
				attribute.String("http.url", c.OriginalURL()),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Response().StatusCode()))
		if uid, ok := c.UserContext().Value(UserIDKey).(string); ok {
			span.SetAttributes(attribute.String("user.id", uid))
		}
		if err != nil {
			span.RecordError(err)
		}
		return err
	}
}
