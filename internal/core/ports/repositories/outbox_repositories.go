package repositories

import (
	"context"
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
)

// OutboxReader lists undelivered notifications.
type OutboxReader interface {
	// ListPendingNotifications retrieves up to limit pending messages,
	// oldest first.
	ListPendingNotifications(ctx context.Context, limit int) ([]domain.NotificationMessage, error)
}

// OutboxWriter records delivery outcomes. Enqueueing happens inside the
// financial repositories' transactions, not here.
type OutboxWriter interface {
	// SaveNotification enqueues a standalone message outside a financial
	// transaction.
	SaveNotification(ctx context.Context, note domain.NotificationMessage) error

	// MarkNotificationSent flips a message to SENT.
	MarkNotificationSent(ctx context.Context, messageID string, sentAt time.Time) error

	// MarkNotificationFailed increments the attempt counter and flips the
	// message to FAILED.
	MarkNotificationFailed(ctx context.Context, messageID string, failedAt time.Time) error
}

// OutboxRepositoryFacade combines the outbox repository interfaces.
type OutboxRepositoryFacade interface {
	OutboxReader
	OutboxWriter
}
