package eventcatalog

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/jubilee25/celebration-api/internal/adapters/static/eventcatalog")
