package judge

import (
	"context"
	"log/slog"

	copilot "github.com/github/copilot-sdk/go"
)

// sessionLogger returns a session event handler that logs the judge's
// conversation at debug level. Streaming deltas are skipped; the complete
// message follows them.
func sessionLogger(ctx context.Context, model string) copilot.SessionEventHandler {
	return func(event copilot.SessionEvent) {
		if !slog.Default().Enabled(ctx, slog.LevelDebug) || event.Data.DeltaContent != nil {
			return
		}

		attrs := []any{"type", event.Type}
		if model != "" {
			attrs = append(attrs, "model", model)
		}
		attrs = addIf(attrs, "content", event.Data.Content)
		attrs = addIf(attrs, "toolName", event.Data.ToolName)
		attrs = addIf(attrs, "toolCallID", event.Data.ToolCallID)
		attrs = addIf(attrs, "reasoningText", event.Data.ReasoningText)

		slog.DebugContext(ctx, "Judge session event", attrs...)
	}
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}
	return attrs
}
