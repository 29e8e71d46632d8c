package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func Test_Telemetry_logs(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	SetLogHandler(slog.NewJSONHandler(buf, nil))
	t.Cleanup(func() { SetLogHandler(nil) })

	tel := NewTelemetry("connector", "test")

	tel.LogInfo("initializing", "capacity", 8)
	tel.LogError("failed to write", errors.New("boom"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	record := map[string]any{}
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal("initializing", record["msg"])
	assert.Equal("connector", record["kind"])
	assert.Equal("test", record["name"])
	assert.EqualValues(8, record["capacity"])

	record = map[string]any{}
	require.NoError(t, json.Unmarshal(lines[1], &record))
	assert.Equal("ERROR", record["level"])
	assert.Equal("boom", record["err"])
}

func Test_Telemetry_metrics(t *testing.T) {
	assert := assert.New(t)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	tel := NewTelemetry("connector", "metrics")

	written := int64(0)
	tel.NewCounter("written_items", func() int64 { return written })
	tel.NewUpDownCounter("buffered_items", func() int64 { return 3 })

	hist := tel.NewHistogram("latency")
	hist.Record(t.Context(), 12)
	hist.Record(t.Context(), 30)

	written = 42

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(t.Context(), &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true

			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				require.Len(t, data.DataPoints, 1)

				switch m.Name {
				case "written_items":
					assert.True(data.IsMonotonic)
					assert.Equal(int64(42), data.DataPoints[0].Value)
				case "buffered_items":
					assert.False(data.IsMonotonic)
					assert.Equal(int64(3), data.DataPoints[0].Value)
				}

				name, ok := data.DataPoints[0].Attributes.Value("name")
				assert.True(ok)
				assert.Equal("metrics", name.AsString())

			case metricdata.Histogram[int64]:
				require.Len(t, data.DataPoints, 1)
				assert.Equal(uint64(2), data.DataPoints[0].Count)
				assert.Equal(int64(42), data.DataPoints[0].Sum)
			}
		}
	}

	assert.True(found["written_items"])
	assert.True(found["buffered_items"])
	assert.True(found["latency"])
}

func Test_Telemetry_traces(t *testing.T) {
	assert := assert.New(t)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	tel := NewTelemetry("bench", "traces")

	_, span := tel.NewTrace(t.Context(), "produce items")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal("produce items", spans[0].Name())

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal("bench", attrs["kind"])
	assert.Equal("traces", attrs["name"])
}

func Test_Telemetry_sharedCounterName(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	first := NewTelemetry("connector", "first")
	second := NewTelemetry("connector", "second")

	first.NewCounter("shared_items", func() int64 { return 10 })
	second.NewCounter("shared_items", func() int64 { return 11 })
	first.NewUpDownCounter("shared_level", func() int64 { return -1 })
	second.NewUpDownCounter("shared_level", func() int64 { return 2 })

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(t.Context(), &rm))

	values := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}

			for _, dp := range sum.DataPoints {
				name, _ := dp.Attributes.Value("name")
				values[m.Name+"/"+name.AsString()] = dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{
		"shared_items/first":  10,
		"shared_items/second": 11,
		"shared_level/first":  -1,
		"shared_level/second": 2,
	}, values)
}
