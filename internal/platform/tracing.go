package platform

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/basketmc/internal/orchestration"
)

func (s *Session) startSpan(t *task) (context.Context, trace.Span) {
	return s.tracer.Start(s.ctx, "unit."+useCaseLabel(t.useCase),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("basketmc.session_id", s.id),
			attribute.String("basketmc.task_id", t.id),
			attribute.String("basketmc.use_case", t.useCase),
			attribute.Int("basketmc.dependencies", len(t.spec.DataDependencies)),
			attribute.StringSlice("basketmc.outputs", t.spec.ExpectedOutputs),
		))
}

func endSpan(span trace.Span, out orchestration.Output) {
	if out.IsOk() {
		span.SetStatus(codes.Ok, "")
	} else {
		span.RecordError(errors.New(out.Error.Details))
		span.SetStatus(codes.Error, out.Error.Details)
	}
	span.End()
}
