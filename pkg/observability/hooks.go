package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/weave/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level, and expansions at
// info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node started", "run_id", e.RunID, "node", e.NodeID, "class", e.Class)
		},
		OnNodeDone: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node done", "run_id", e.RunID, "node", e.NodeID, "display", e.DisplayID, "outputs", len(e.Outputs))
		},
		OnExpand: func(ctx context.Context, e *domain.ExpansionEvent) {
			logger.InfoContext(ctx, "graph expanded", "run_id", e.RunID, "node", e.NodeID, "prefix", e.Prefix, "added", e.Added)
		},
	}
}

// Combine returns hooks that call each of hooks in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnNodeStart = chainNode(out.OnNodeStart, h.OnNodeStart)
		out.OnNodeDone = chainNode(out.OnNodeDone, h.OnNodeDone)
		out.OnExpand = chainExpand(out.OnExpand, h.OnExpand)
	}
	return out
}

func chainNode(a, b func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainExpand(a, b func(context.Context, *domain.ExpansionEvent)) func(context.Context, *domain.ExpansionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.ExpansionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
