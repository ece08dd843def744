package bolt

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/Kerhoff/wedding/internal/repository/bolt")
