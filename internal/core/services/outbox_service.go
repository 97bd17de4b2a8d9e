package services

import (
	"context"
	"log/slog"

	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/ketepool/member_fund_app/internal/platform/clock"
	"github.com/ketepool/member_fund_app/internal/platform/ctxlog"
)

// outboxService drains the notification outbox. Delivery is best-effort:
// a failed delivery marks the row and moves on, it never propagates.
type outboxService struct {
	outboxRepo portsrepo.OutboxRepositoryFacade
	notifier   portssvc.Notifier
	clk        clock.Clock
	batchSize  int
}

// NewOutboxService creates a new OutboxService.
func NewOutboxService(outboxRepo portsrepo.OutboxRepositoryFacade, notifier portssvc.Notifier, clk clock.Clock, batchSize int) portssvc.OutboxSvcFacade {
	return &outboxService{
		outboxRepo: outboxRepo,
		notifier:   notifier,
		clk:        clk,
		batchSize:  batchSize,
	}
}

// Ensure outboxService implements the portssvc.OutboxSvcFacade interface
var _ portssvc.OutboxSvcFacade = (*outboxService)(nil)

// DispatchPending delivers one batch of pending notifications, oldest
// first, and returns the number successfully sent.
func (s *outboxService) DispatchPending(ctx context.Context) (int, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	pending, err := s.outboxRepo.ListPendingNotifications(ctx, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, note := range pending {
		now := s.clk.Now()
		if err := s.notifier.Notify(ctx, note); err != nil {
			logger.Warn("notification delivery failed",
				slog.String("message_id", note.MessageID),
				slog.String("topic", note.Topic),
				slog.String("error", err.Error()),
			)
			if markErr := s.outboxRepo.MarkNotificationFailed(ctx, note.MessageID, now); markErr != nil {
				return sent, markErr
			}
			continue
		}
		if err := s.outboxRepo.MarkNotificationSent(ctx, note.MessageID, now); err != nil {
			return sent, err
		}
		sent++
	}

	if len(pending) > 0 {
		logger.Info("outbox dispatched",
			slog.Int("pending", len(pending)),
			slog.Int("sent", sent),
		)
	}
	return sent, nil
}
