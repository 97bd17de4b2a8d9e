package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ketepool/member_fund_app/internal/apperrors"
	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	"github.com/ketepool/member_fund_app/internal/models"
	"github.com/ketepool/member_fund_app/internal/utils/mapping"
)

type PgxOutboxRepository struct {
	BaseRepository
}

// newPgxOutboxRepository creates a new repository for the notification
// outbox.
func newPgxOutboxRepository(pool *pgxpool.Pool) portsrepo.OutboxRepositoryFacade {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxOutboxRepository implements the facade
var _ portsrepo.OutboxRepositoryFacade = (*PgxOutboxRepository)(nil)

const insertNotificationQuery = `
	INSERT INTO notification_outbox (message_id, topic, member_id, payload, status, attempts, created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// insertNotificationTx enqueues one outbox row inside an existing DB
// transaction, so the notification commits together with the financial
// operation that produced it.
func insertNotificationTx(ctx context.Context, tx pgx.Tx, note domain.NotificationMessage) error {
	m := mapping.ToModelNotificationMessage(note)
	_, err := tx.Exec(ctx, insertNotificationQuery,
		m.MessageID,
		m.Topic,
		m.MemberID,
		m.Payload,
		m.Status,
		m.Attempts,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", note.MessageID, err)
	}
	return nil
}

// SaveNotification enqueues a standalone message outside any financial
// transaction.
func (r *PgxOutboxRepository) SaveNotification(ctx context.Context, note domain.NotificationMessage) error {
	m := mapping.ToModelNotificationMessage(note)
	_, err := r.Pool.Exec(ctx, insertNotificationQuery,
		m.MessageID,
		m.Topic,
		m.MemberID,
		m.Payload,
		m.Status,
		m.Attempts,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", note.MessageID, err)
	}
	return nil
}

// ListPendingNotifications retrieves up to limit pending messages, oldest
// first.
func (r *PgxOutboxRepository) ListPendingNotifications(ctx context.Context, limit int) ([]domain.NotificationMessage, error) {
	query := `
		SELECT message_id, topic, member_id, payload, status, attempts, created_at, created_by, last_updated_at, last_updated_by
		FROM notification_outbox
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.NotificationPending), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending notifications: %w", err)
	}
	defer rows.Close()

	var modelNotes []models.NotificationMessage
	for rows.Next() {
		var m models.NotificationMessage
		err := rows.Scan(
			&m.MessageID,
			&m.Topic,
			&m.MemberID,
			&m.Payload,
			&m.Status,
			&m.Attempts,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		modelNotes = append(modelNotes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return mapping.ToDomainNotificationMessageSlice(modelNotes), nil
}

// MarkNotificationSent flips a message to SENT.
func (r *PgxOutboxRepository) MarkNotificationSent(ctx context.Context, messageID string, sentAt time.Time) error {
	query := `
		UPDATE notification_outbox
		SET status = $1, attempts = attempts + 1, last_updated_at = $2
		WHERE message_id = $3;
	`
	tag, err := r.Pool.Exec(ctx, query, string(domain.NotificationSent), sentAt, messageID)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s sent: %w", messageID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkNotificationFailed increments the attempt counter and flips the
// message to FAILED.
func (r *PgxOutboxRepository) MarkNotificationFailed(ctx context.Context, messageID string, failedAt time.Time) error {
	query := `
		UPDATE notification_outbox
		SET status = $1, attempts = attempts + 1, last_updated_at = $2
		WHERE message_id = $3;
	`
	tag, err := r.Pool.Exec(ctx, query, string(domain.NotificationFailed), failedAt, messageID)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s failed: %w", messageID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
