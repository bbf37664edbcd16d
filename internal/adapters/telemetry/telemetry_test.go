package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/plait/internal/adapters/telemetry"
	"go.trai.ch/plait/internal/core/ports"
)

func TestOTelTracer_WithRenderer(t *testing.T) {
	rec := &recordingRenderer{}
	tracer := telemetry.NewOTelTracer("test-tracer").WithRenderer(rec)
	ctx := context.Background()

	tracer.EmitPlan(ctx,
		[]string{"build:cleanDist", "build:buildFonts"},
		map[string][]string{"build:buildFonts": {"build:cleanDist"}},
		[]string{"build"},
	)

	_, span := tracer.Start(ctx, "build:buildFonts")
	_, err := span.Write([]byte("generated 12 glyphs\n"))
	require.NoError(t, err)
	span.End()

	require.NoError(t, tracer.Shutdown(ctx))

	plans, logs, _, _ := rec.snapshot()
	assert.Equal(t, [][]string{{"build:cleanDist", "build:buildFonts"}}, plans)
	assert.Equal(t, "generated 12 glyphs\n", logs)
}

func TestOTelTracer_UnitSpansReachRenderer(t *testing.T) {
	rec := &recordingRenderer{}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(rec)))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracer("test").WithRenderer(rec)
	ctx := context.Background()

	_, styles := tracer.Start(ctx, "default:buildStyles", ports.WithUnit("buildStyles"))
	_, _, starts, completes := rec.snapshot()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 0, completes)
	styles.End()

	_, scripts := tracer.Start(ctx, "default:buildScripts", ports.WithUnit("buildScripts"))
	scripts.RecordError(errors.New("transform failed"))
	scripts.End()

	_, plain := tracer.Start(ctx, "untracked")
	plain.End()

	require.NoError(t, tracer.Shutdown(ctx))
	_, _, starts, completes = rec.snapshot()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 2, completes)
}

func TestOTelSpan_Attributes(_ *testing.T) {
	tracer := telemetry.NewOTelTracer("test")
	_, span := tracer.Start(context.Background(), "test")

	span.SetAttribute("string", "val")
	span.SetAttribute("int", 123)
	span.SetAttribute("int64", int64(123))
	span.SetAttribute("float64", 12.34)
	span.SetAttribute("bool", true)
	span.SetAttribute("slice", []string{"a", "b"})
	span.SetAttribute("other", complex(1, 1))

	span.End()
}

func TestTracer_NoRenderer(t *testing.T) {
	tracer := telemetry.NewOTelTracer("test")
	ctx := context.Background()

	tracer.EmitPlan(ctx, []string{"task"}, map[string][]string{}, []string{})

	_, span := tracer.Start(ctx, "task")

	n, err := span.Write([]byte("log"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	span.End()
}

func TestOTelTracer_Shutdown(t *testing.T) {
	tracer := telemetry.NewOTelTracer("test")
	ctx := context.Background()

	require.NoError(t, tracer.Shutdown(ctx))
	require.NoError(t, tracer.Shutdown(ctx))
}

func TestOTelSpan_RecordError(_ *testing.T) {
	tracer := telemetry.NewOTelTracer("test")
	ctx := context.Background()

	_, span := tracer.Start(ctx, "test-error")
	span.RecordError(errors.New("test error"))
	span.End()
}

func TestOTelTracer_LogBatching(t *testing.T) {
	rec := &recordingRenderer{}
	tracer := telemetry.NewOTelTracer("test").WithRenderer(rec)
	ctx := context.Background()

	_, span := tracer.Start(ctx, "test-span")
	for range 10 {
		_, _ = span.Write([]byte("log"))
	}
	span.End()

	require.NoError(t, tracer.Shutdown(ctx))

	_, logs, _, _ := rec.snapshot()
	assert.Equal(t, "loglogloglogloglogloglogloglog", logs)
}
