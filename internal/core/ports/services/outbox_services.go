package services

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/core/domain"
)

// Notifier delivers one notification to the external dispatch collaborator.
type Notifier interface {
	Notify(ctx context.Context, note domain.NotificationMessage) error
}

// OutboxSvcFacade drains the notification outbox. Delivery is best-effort:
// failures mark the row and never propagate to financial operations.
type OutboxSvcFacade interface {
	// DispatchPending delivers one batch of pending notifications and
	// returns the number successfully sent.
	DispatchPending(ctx context.Context) (int, error)
}
