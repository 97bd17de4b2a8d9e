package notify

import (
	"context"
	"log/slog"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
)

// SlogNotifier delivers outbox notifications to the structured log. It
// stands in for the external dispatch channel (mail, SMS, webhooks) in
// deployments that have not wired one.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a log-backed Notifier.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{logger: logger}
}

var _ portssvc.Notifier = (*SlogNotifier)(nil)

func (n *SlogNotifier) Notify(_ context.Context, note domain.NotificationMessage) error {
	n.logger.Info("notification dispatched",
		slog.String("message_id", note.MessageID),
		slog.String("topic", note.Topic),
		slog.String("member_id", note.MemberID),
		slog.String("payload", note.Payload),
	)
	return nil
}
