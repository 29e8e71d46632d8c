// Package internal contains the telemetry shared by the library components.
package internal

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/FerroO2000/circbuf"

var (
	handlerMux sync.RWMutex
	logHandler slog.Handler = newConsoleHandler()
)

func newConsoleHandler() slog.Handler {
	return tint.NewHandler(colorable.NewColorableStderr(), &tint.Options{
		Level:   slog.LevelInfo,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})
}

// SetLogHandler replaces the handler used by the telemetry created afterwards.
// A nil handler restores the console one.
func SetLogHandler(handler slog.Handler) {
	if handler == nil {
		handler = newConsoleHandler()
	}

	handlerMux.Lock()
	logHandler = handler
	handlerMux.Unlock()
}

func currentLogHandler() slog.Handler {
	handlerMux.RLock()
	defer handlerMux.RUnlock()

	return logHandler
}

// Telemetry bundles the logger, the tracer, and the meter of a component.
type Telemetry struct {
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter

	attrs attribute.Set
}

// NewTelemetry returns the telemetry for the component
// of the given kind (e.g. "connector") and name.
func NewTelemetry(kind, name string) *Telemetry {
	return &Telemetry{
		logger: slog.New(currentLogHandler()).With("kind", kind, "name", name),
		tracer: otel.Tracer(scopeName),
		meter:  otel.Meter(scopeName),

		attrs: attribute.NewSet(
			attribute.String("kind", kind),
			attribute.String("name", name),
		),
	}
}

// LogInfo logs a message at info level.
func (t *Telemetry) LogInfo(msg string, args ...any) {
	t.logger.Info(msg, args...)
}

// LogWarn logs a message at warn level.
func (t *Telemetry) LogWarn(msg string, args ...any) {
	t.logger.Warn(msg, args...)
}

// LogError logs a message with the error at error level.
func (t *Telemetry) LogError(msg string, err error, args ...any) {
	t.logger.Error(msg, append([]any{tint.Err(err)}, args...)...)
}

// NewTrace starts a new span.
func (t *Telemetry) NewTrace(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, trace.WithAttributes(t.attrs.ToSlice()...))
}

// NewCounter registers an observable counter reading its value from cb.
// Components sharing the counter name report distinct series,
// told apart by their kind and name attributes.
func (t *Telemetry) NewCounter(name string, cb func() int64) {
	counter, err := t.meter.Int64ObservableCounter(name)
	if err != nil {
		t.LogError("failed to create counter", err, "counter", name)
		return
	}

	t.registerCallback(name, counter, cb)
}

// NewUpDownCounter registers an observable up/down counter reading its value from cb.
func (t *Telemetry) NewUpDownCounter(name string, cb func() int64) {
	counter, err := t.meter.Int64ObservableUpDownCounter(name)
	if err != nil {
		t.LogError("failed to create up/down counter", err, "counter", name)
		return
	}

	t.registerCallback(name, counter, cb)
}

// registerCallback attaches cb to the instrument for this telemetry only.
// Instruments with the same name are shared by every component of the meter.
func (t *Telemetry) registerCallback(name string, inst metric.Int64Observable, cb func() int64) {
	_, err := t.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(inst, cb(), metric.WithAttributeSet(t.attrs))
		return nil
	}, inst)

	if err != nil {
		t.LogError("failed to register callback", err, "counter", name)
	}
}

// Histogram records int64 measurements with the attributes of its telemetry.
type Histogram struct {
	hist  metric.Int64Histogram
	attrs attribute.Set
}

// Record records a value.
func (h *Histogram) Record(ctx context.Context, value int64) {
	if h.hist == nil {
		return
	}
	h.hist.Record(ctx, value, metric.WithAttributeSet(h.attrs))
}

// NewHistogram creates a new histogram.
func (t *Telemetry) NewHistogram(name string, opts ...metric.Int64HistogramOption) *Histogram {
	hist, err := t.meter.Int64Histogram(name, opts...)
	if err != nil {
		t.LogError("failed to create histogram", err, "histogram", name)
	}

	return &Histogram{
		hist:  hist,
		attrs: t.attrs,
	}
}
