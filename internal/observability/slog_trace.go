package observability

import (
	"context"
	"log/slog"

	"github.com/geocoder89/profilehub/internal/actorctx"
	"go.opentelemetry.io/otel/trace"
)

// TraceHandler copies the active span's ids onto each record so logs and
// traces can be joined. The authenticated caller, when known, is added too.
type TraceHandler struct {
	next slog.Handler
}

func NewTraceHandler(next slog.Handler) *TraceHandler {
	return &TraceHandler{next: next}
}

func (h *TraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			r.AddAttrs(
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
		}
		if actor, ok := actorctx.From(ctx); ok {
			r.AddAttrs(slog.String("actor_id", actor.ID), slog.String("actor_role", actor.Role))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{next: h.next.WithGroup(name)}
}
