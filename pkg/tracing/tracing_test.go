package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracerDisabled(t *testing.T) {
	tp, tracer, err := InitTracer(context.Background(), Options{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tp)
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "noop")
	span.End()
}

func TestInitTracerEnabledWithStubExporter(t *testing.T) {
	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()

	stub := &stubExporter{}
	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		stub.endpoint = endpoint
		return stub, nil
	}

	tp, tracer, err := InitTracer(context.Background(), Options{Enabled: true, Endpoint: "collector:4317", Version: "1.2.3"})
	require.NoError(t, err)
	require.NotNil(t, tracer)
	assert.Equal(t, "collector:4317", stub.endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestInitTracerDefaultEndpoint(t *testing.T) {
	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()

	var got string
	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		got = endpoint
		return &stubExporter{}, nil
	}

	_, _, err := InitTracer(context.Background(), Options{Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, "localhost:4317", got)
}

func TestInitTracerExporterError(t *testing.T) {
	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()

	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		return nil, errors.New("dial failed")
	}

	_, _, err := InitTracer(context.Background(), Options{Enabled: true})
	assert.EqualError(t, err, "dial failed")
}

type stubExporter struct {
	endpoint string
}

func (s *stubExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (s *stubExporter) Shutdown(ctx context.Context) error {
	return nil
}
