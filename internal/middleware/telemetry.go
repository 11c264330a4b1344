package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware returns the otelgin middleware followed by one that
// decorates its span. Use with router.Use(TracingMiddleware(name)...).
func TracingMiddleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), spanAttributes}
}

// spanAttributes runs inside the otelgin span, so the span is still open
// after c.Next returns.
func spanAttributes(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}

	if requestID := c.GetString("request_id"); requestID != "" {
		span.SetAttributes(attribute.String("request.id", requestID))
	}
	if q := c.Query("q"); q != "" {
		span.SetAttributes(attribute.Int("search.query_length", len(q)))
	}
	if index := c.Query("index"); index != "" {
		span.SetAttributes(attribute.String("search.index", index))
	}
	if limit := c.Query("limit"); limit != "" {
		span.SetAttributes(attribute.String("query.limit", limit))
	}
	if offset := c.Query("offset"); offset != "" {
		span.SetAttributes(attribute.String("query.offset", offset))
	}

	c.Next()

	for _, ginErr := range c.Errors {
		if ginErr.Err != nil {
			span.RecordError(ginErr.Err)
			span.SetStatus(codes.Error, ginErr.Error())
		}
	}
}
