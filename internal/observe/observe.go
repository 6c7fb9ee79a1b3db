package observe

import (
	"context"
	"io"

	"github.com/felixgeelhaar/bolt/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("recall")

// Observer bundles the logger, tracer and metrics shared by the stores.
type Observer struct {
	log     *bolt.Logger
	metrics *Metrics
}

// New creates a new Observer with console output.
// If verbose is false, only warnings and errors are shown.
func New(out io.Writer, verbose bool) *Observer {
	return newObserver(bolt.New(bolt.NewConsoleHandler(out)), verbose)
}

// NewJSON creates a new Observer with JSON output.
// If verbose is false, only warnings and errors are shown.
func NewJSON(out io.Writer, verbose bool) *Observer {
	return newObserver(bolt.New(bolt.NewJSONHandler(out)), verbose)
}

// Discard returns an Observer that drops all log output.
func Discard() *Observer {
	return newObserver(bolt.New(bolt.NewJSONHandler(io.Discard)), false)
}

func newObserver(l *bolt.Logger, verbose bool) *Observer {
	if !verbose {
		l.SetLevel(bolt.WARN)
	}
	return &Observer{
		log:     l,
		metrics: NewMetrics(),
	}
}

// Log returns the underlying logger
func (o *Observer) Log() *bolt.Logger {
	return o.log
}

// Metrics returns the Prometheus collectors owned by this observer.
func (o *Observer) Metrics() *Metrics {
	return o.metrics
}

// StartSpan starts a new OTel span tagged with the record kind.
func (o *Observer) StartSpan(ctx context.Context, name, kind string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("recall.kind", kind)))
}

// Close releases the observer. bolt writes synchronously and spans go to the
// global otel provider, so there is nothing to flush today; callers still
// close it so a buffered handler or exporter can be added without touching
// them.
func (o *Observer) Close() error {
	return nil
}
