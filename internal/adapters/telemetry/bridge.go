package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/plait/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is a span processor that reports unit spans to a Renderer.
// Spans without the unit attribute are not shown.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a Bridge reporting to renderer. A nil renderer disables it.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if !b.reports(s) {
		return
	}

	var parentID string
	if p := trace.SpanContextFromContext(parent); p.IsValid() {
		parentID = p.SpanID().String()
	}
	b.renderer.OnTaskStart(s.SpanContext().SpanID().String(), parentID, s.Name(), s.StartTime())
}

func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if !b.reports(s) {
		return
	}

	var err error
	if status := s.Status(); status.Code == codes.Error {
		msg := status.Description
		if msg == "" {
			msg = "unit failed"
		}
		err = errors.New(msg)
	}
	b.renderer.OnTaskComplete(s.SpanContext().SpanID().String(), s.EndTime(), err)
}

func (b *Bridge) ForceFlush(context.Context) error { return nil }

func (b *Bridge) Shutdown(context.Context) error { return nil }

func (b *Bridge) reports(s sdktrace.ReadOnlySpan) bool {
	return b.renderer != nil && s.SpanContext().IsValid() && isUnitSpan(s.Attributes())
}

func isUnitSpan(attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		if kv.Key == UnitAttribute {
			return true
		}
	}
	return false
}
