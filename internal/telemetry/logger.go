package telemetry

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a JSON logger on stdout with OTEL hooks.
func NewLogger(service string) *Logger {
	return NewLoggerTo(os.Stdout, service)
}

// NewLoggerTo is NewLogger writing to w.
func NewLoggerTo(w io.Writer, service string) *Logger {
	logger := zerolog.New(w).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// Wrap adds the OTEL hook to an existing zerolog logger.
func Wrap(l zerolog.Logger) *Logger {
	return &Logger{Logger: l.Hook(OTELHook{})}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// LogSpanEnd logs the end of a span with results
func (l *Logger) LogSpanEnd(ctx context.Context, spanName string, err error, attrs ...attribute.KeyValue) {
	logger := l.WithContext(ctx)

	if err != nil {
		event := logger.Error().Err(err).Str("span_name", spanName)
		for _, attr := range attrs {
			event = addAttributeToEvent(event, attr)
		}
		event.Msg("span failed")
		return
	}

	event := logger.Debug().Str("span_name", spanName)
	for _, attr := range attrs {
		event = addAttributeToEvent(event, attr)
	}
	event.Msg("span completed")
}

// Helper to convert OTEL attributes to zerolog fields
func addAttributeToEvent(event *zerolog.Event, attr attribute.KeyValue) *zerolog.Event {
	key := string(attr.Key)

	switch attr.Value.Type() {
	case attribute.STRING:
		return event.Str(key, attr.Value.AsString())
	case attribute.INT64:
		return event.Int64(key, attr.Value.AsInt64())
	case attribute.FLOAT64:
		return event.Float64(key, attr.Value.AsFloat64())
	case attribute.BOOL:
		return event.Bool(key, attr.Value.AsBool())
	default:
		return event.Str(key, attr.Value.Emit())
	}
}

// LogDatasetLoaded records which source a dataset came from.
func (l *Logger) LogDatasetLoaded(ctx context.Context, source string, regions, providers int) {
	l.WithContext(ctx).Info().
		Str("source", source).
		Int("regions", regions).
		Int("providers", providers).
		Str("operation", "load").
		Msg("dataset loaded")
}

// LogFallback records a fallback from one source to the next.
func (l *Logger) LogFallback(ctx context.Context, from string, err error) {
	l.WithContext(ctx).Warn().
		Err(err).
		Str("from", from).
		Str("operation", "load").
		Msg("data source unavailable, falling back")
}

// LogCacheError records a failure of the on-disk cache.
func (l *Logger) LogCacheError(ctx context.Context, operation string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("operation", operation).
		Msg("cache operation failed")
}
