package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("kind", event.Kind.String()),
		slog.String("path", event.PathString()),
	}

	if event.SubscriptionID != "" {
		attrs = append(attrs, slog.String("sub_id", event.SubscriptionID))
	}

	switch event.Kind {
	case KindSubscribe, KindUnsubscribe, KindSettle:
		attrs = append(attrs, slog.Int("listeners", event.Listeners))
	case KindPublish:
		attrs = append(attrs,
			slog.Int("pending", event.Pending),
			slog.Bool("armed", event.Armed),
			slog.Int("patch_keys", len(event.Patch)),
		)
	case KindError:
		attrs = append(attrs, slog.String("error", event.Error))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
