package service

import (
	"context"
	"log/slog"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/observability"
)

// Notifier delivers messages to users. Delivery mechanics (push, email)
// live outside the engine; implementations are fire-and-forget and must
// never fail a moderation or verification flow.
type Notifier interface {
	Notify(ctx context.Context, userID uint, message string)
}

// LogNotifier is the default Notifier. It records the notification in the
// structured log; the host application swaps in a real delivery channel.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a Notifier that writes to the application log.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: observability.Logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, userID uint, message string) {
	n.logger.InfoContext(ctx, "user notification",
		slog.Any("recipient_id", userID),
		slog.String("message", message),
	)
}
