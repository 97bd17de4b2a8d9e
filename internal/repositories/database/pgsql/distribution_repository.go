package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ketepool/member_fund_app/internal/apperrors"
	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	"github.com/ketepool/member_fund_app/internal/models"
	"github.com/ketepool/member_fund_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxDistributionRepository struct {
	BaseRepository
}

// newPgxDistributionRepository creates a new repository for distribution
// batches and profit shares.
func newPgxDistributionRepository(pool *pgxpool.Pool) portsrepo.DistributionRepositoryFacade {
	return &PgxDistributionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxDistributionRepository implements the facade
var _ portsrepo.DistributionRepositoryFacade = (*PgxDistributionRepository)(nil)

const batchColumns = `batch_id, period_type, period_start, period_end, total_pool, total_distributed, status, failure_reason, processed_at, created_at, created_by, last_updated_at, last_updated_by`

const insertBatchQuery = `
	INSERT INTO profit_distribution_batches (` + batchColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

// SaveDistributionBatch persists one completed distribution run: the batch
// row, every share, the pending ledger entries, the loan-counter
// adjustments and the outbox notifications. Everything commits or nothing
// does, so a partially distributed batch can never be observed.
func (r *PgxDistributionRepository) SaveDistributionBatch(ctx context.Context, batch domain.ProfitDistributionBatch, shares []domain.ProfitShare, txns []domain.Transaction, loanRepayments map[string]decimal.Decimal, notes []domain.NotificationMessage) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := batch.CreatedAt
	userID := batch.CreatedBy

	modelBatch := mapping.ToModelDistributionBatch(batch)
	_, err = tx.Exec(ctx, insertBatchQuery,
		modelBatch.BatchID,
		modelBatch.PeriodType,
		modelBatch.PeriodStart,
		modelBatch.PeriodEnd,
		modelBatch.TotalPool,
		modelBatch.TotalDistributed,
		modelBatch.Status,
		"",
		modelBatch.ProcessedAt,
		modelBatch.CreatedAt,
		modelBatch.CreatedBy,
		modelBatch.LastUpdatedAt,
		modelBatch.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert distribution batch "+batch.BatchID, err)
	}

	// Lock members receiving a loan repayment in a stable order to avoid
	// deadlocks with concurrent loan operations.
	memberIDs := make([]string, 0, len(loanRepayments))
	for memberID := range loanRepayments {
		memberIDs = append(memberIDs, memberID)
	}
	sort.Strings(memberIDs)

	for _, memberID := range memberIDs {
		repayment := loanRepayments[memberID]
		if !repayment.IsPositive() {
			continue
		}

		balance, err := lockMemberLoanState(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if balance.LessThan(repayment) {
			return fmt.Errorf("%w: repayment %s exceeds loan balance %s for member %s",
				apperrors.ErrConflict, repayment.String(), balance.String(), memberID)
		}

		updateQuery := `
			UPDATE members
			SET loan_balance = loan_balance - $1,
			    loan_repaid_total = loan_repaid_total + $1,
			    last_updated_at = $2,
			    last_updated_by = $3
			WHERE member_id = $4;
		`
		if _, err := tx.Exec(ctx, updateQuery, repayment, now, userID, memberID); err != nil {
			return apperrors.NewAppError(500, "failed to apply loan repayment for member "+memberID, err)
		}
	}

	shareQuery := `
		INSERT INTO profit_shares (share_id, batch_id, member_id, amount, pool_percent, method, status, transaction_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	batchInsert := &pgx.Batch{}
	for _, share := range shares {
		m := mapping.ToModelProfitShare(share)
		batchInsert.Queue(shareQuery,
			m.ShareID,
			m.BatchID,
			m.MemberID,
			m.Amount,
			m.PoolPercent,
			m.Method,
			m.Status,
			m.TransactionID,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	for _, txn := range txns {
		m := mapping.ToModelTransaction(txn)
		batchInsert.Queue(insertTransactionQuery,
			m.TransactionID,
			m.MemberID,
			m.TransactionType,
			m.Amount,
			m.Status,
			m.Reference,
			m.Notes,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	for _, note := range notes {
		m := mapping.ToModelNotificationMessage(note)
		batchInsert.Queue(insertNotificationQuery,
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
	}

	results := tx.SendBatch(ctx, batchInsert)
	for i := 0; i < batchInsert.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert distribution rows for batch "+batch.BatchID, err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close batch insert for batch "+batch.BatchID, err)
	}

	return r.Commit(ctx, tx)
}

// MarkBatchFailed records a failed run for audit. Failed batches carry no
// shares or transactions.
func (r *PgxDistributionRepository) MarkBatchFailed(ctx context.Context, batch domain.ProfitDistributionBatch, reason string) error {
	modelBatch := mapping.ToModelDistributionBatch(batch)
	_, err := r.Pool.Exec(ctx, insertBatchQuery,
		modelBatch.BatchID,
		modelBatch.PeriodType,
		modelBatch.PeriodStart,
		modelBatch.PeriodEnd,
		modelBatch.TotalPool,
		modelBatch.TotalDistributed,
		string(domain.BatchFailed),
		reason,
		modelBatch.ProcessedAt,
		modelBatch.CreatedAt,
		modelBatch.CreatedBy,
		modelBatch.LastUpdatedAt,
		modelBatch.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to record failed batch "+batch.BatchID, err)
	}
	return nil
}

func scanBatch(row pgx.Row) (models.ProfitDistributionBatch, error) {
	var m models.ProfitDistributionBatch
	err := row.Scan(
		&m.BatchID,
		&m.PeriodType,
		&m.PeriodStart,
		&m.PeriodEnd,
		&m.TotalPool,
		&m.TotalDistributed,
		&m.Status,
		&m.FailureReason,
		&m.ProcessedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindBatchByID retrieves one distribution batch.
func (r *PgxDistributionRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.ProfitDistributionBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM profit_distribution_batches WHERE batch_id = $1;`

	m, err := scanBatch(r.Pool.QueryRow(ctx, query, batchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find batch by ID %s: %w", batchID, err)
	}

	d := mapping.ToDomainDistributionBatch(m)
	return &d, nil
}

// FindSharesByBatchID retrieves every share of a batch ordered by member.
func (r *PgxDistributionRepository) FindSharesByBatchID(ctx context.Context, batchID string) ([]domain.ProfitShare, error) {
	query := `
		SELECT share_id, batch_id, member_id, amount, pool_percent, method, status, transaction_id, created_at, created_by, last_updated_at, last_updated_by
		FROM profit_shares
		WHERE batch_id = $1
		ORDER BY member_id;
	`
	rows, err := r.Pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var modelShares []models.ProfitShare
	for rows.Next() {
		var m models.ProfitShare
		err := rows.Scan(
			&m.ShareID,
			&m.BatchID,
			&m.MemberID,
			&m.Amount,
			&m.PoolPercent,
			&m.Method,
			&m.Status,
			&m.TransactionID,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share row: %w", err)
		}
		modelShares = append(modelShares, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating share rows: %w", err)
	}

	return mapping.ToDomainProfitShareSlice(modelShares), nil
}

// UpdateShareStatusByTransaction flips the share carried by the given
// ledger entry. Returns apperrors.ErrNotFound when no share references it.
func (r *PgxDistributionRepository) UpdateShareStatusByTransaction(ctx context.Context, transactionID string, status domain.ShareStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE profit_shares
		SET status = $1, last_updated_by = $2, last_updated_at = $3
		WHERE transaction_id = $4;
	`
	tag, err := r.Pool.Exec(ctx, query, string(status), updatedBy, updatedAt, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update share status for transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
