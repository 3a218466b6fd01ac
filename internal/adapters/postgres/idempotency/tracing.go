package idempotency

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/jubilee25/celebration-api/internal/adapters/postgres/idempotency")
