package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/notification"
)

// Sender delivers one notification to its recipient.
// Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, n *notification.Notification) error
}

// LogSender writes notifications to the application log instead of an
// external channel. Used in development and as the default when no
// delivery backend is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification
func (s *LogSender) Send(ctx context.Context, n *notification.Notification) error {
	s.logger.Info("delivering notification",
		zap.String("id", n.ID.String()),
		zap.String("kind", string(n.Kind)),
		zap.String("recipient", n.Recipient),
		zap.Int("payload_bytes", len(n.Payload)),
	)
	return nil
}
