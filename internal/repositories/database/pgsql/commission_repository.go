package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ketepool/member_fund_app/internal/apperrors"
	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	"github.com/ketepool/member_fund_app/internal/models"
	"github.com/ketepool/member_fund_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxCommissionRepository struct {
	BaseRepository
}

// newPgxCommissionRepository creates a new repository for referral
// commissions and their clawbacks.
func newPgxCommissionRepository(pool *pgxpool.Pool) portsrepo.CommissionRepositoryFacade {
	return &PgxCommissionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCommissionRepository implements the facade
var _ portsrepo.CommissionRepositoryFacade = (*PgxCommissionRepository)(nil)

// FindPaidCommissionsByMember retrieves every paid commission earned on the
// given (withdrawing) member's investments.
func (r *PgxCommissionRepository) FindPaidCommissionsByMember(ctx context.Context, memberID string) ([]domain.ReferralCommission, error) {
	query := `
		SELECT commission_id, referrer_id, member_id, investment_id, amount, clawed_back, status, created_at, created_by, last_updated_at, last_updated_by
		FROM referral_commissions
		WHERE member_id = $1 AND status = $2
		ORDER BY commission_id;
	`
	rows, err := r.Pool.Query(ctx, query, memberID, string(domain.CommissionPaid))
	if err != nil {
		return nil, fmt.Errorf("failed to query paid commissions for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var modelCommissions []models.ReferralCommission
	for rows.Next() {
		var m models.ReferralCommission
		err := rows.Scan(
			&m.CommissionID,
			&m.ReferrerID,
			&m.MemberID,
			&m.InvestmentID,
			&m.Amount,
			&m.ClawedBack,
			&m.Status,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission row: %w", err)
		}
		modelCommissions = append(modelCommissions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission rows: %w", err)
	}

	return mapping.ToDomainReferralCommissionSlice(modelCommissions), nil
}

// ClawbackExists reports whether a clawback was already applied for the
// (commission, withdrawal) pair.
func (r *PgxCommissionRepository) ClawbackExists(ctx context.Context, commissionID, withdrawalID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM commission_clawbacks WHERE commission_id = $1 AND withdrawal_id = $2);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, commissionID, withdrawalID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check clawback existence for commission %s: %w", commissionID, err)
	}
	return exists, nil
}

// SaveClawbackBatch applies one withdrawal's clawbacks atomically: the
// clawback rows, their ledger debits, the referrers' earnings counters and
// the cumulative clawed_back on each original commission. The unique
// (commission_id, withdrawal_id) index rejects a concurrent re-application.
func (r *PgxCommissionRepository) SaveClawbackBatch(ctx context.Context, clawbacks []domain.CommissionClawback, txns []domain.Transaction, earningsDebits map[string]decimal.Decimal, commissionDeltas map[string]decimal.Decimal) error {
	if len(clawbacks) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := clawbacks[0].CreatedAt
	userID := clawbacks[0].CreatedBy

	// Lock and update each touched commission, enforcing the cumulative cap
	// under the row lock.
	commissionIDs := make([]string, 0, len(commissionDeltas))
	for commissionID := range commissionDeltas {
		commissionIDs = append(commissionIDs, commissionID)
	}
	sort.Strings(commissionIDs)

	for _, commissionID := range commissionIDs {
		delta := commissionDeltas[commissionID]
		if !delta.IsPositive() {
			continue
		}

		var amount, clawedBack decimal.Decimal
		err := tx.QueryRow(ctx,
			`SELECT amount, clawed_back FROM referral_commissions WHERE commission_id = $1 FOR UPDATE;`,
			commissionID,
		).Scan(&amount, &clawedBack)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to lock commission %s: %w", commissionID, err)
		}

		if clawedBack.Add(delta).GreaterThan(amount) {
			return fmt.Errorf("%w: clawback %s would exceed commission %s amount %s (already clawed back %s)",
				apperrors.ErrConflict, delta.String(), commissionID, amount.String(), clawedBack.String())
		}

		newStatus := string(domain.CommissionPaid)
		if clawedBack.Add(delta).Equal(amount) {
			newStatus = string(domain.CommissionClawedBack)
		}

		updateQuery := `
			UPDATE referral_commissions
			SET clawed_back = clawed_back + $1, status = $2, last_updated_at = $3, last_updated_by = $4
			WHERE commission_id = $5;
		`
		if _, err := tx.Exec(ctx, updateQuery, delta, newStatus, now, userID, commissionID); err != nil {
			return apperrors.NewAppError(500, "failed to update clawed_back on commission "+commissionID, err)
		}
	}

	// Debit each referrer's cumulative earnings counter under a row lock.
	referrerIDs := make([]string, 0, len(earningsDebits))
	for referrerID := range earningsDebits {
		referrerIDs = append(referrerIDs, referrerID)
	}
	sort.Strings(referrerIDs)

	for _, referrerID := range referrerIDs {
		debit := earningsDebits[referrerID]
		if !debit.IsPositive() {
			continue
		}

		if _, err := lockMemberLoanState(ctx, tx, referrerID); err != nil {
			return err
		}

		updateQuery := `
			UPDATE members
			SET referral_earnings = referral_earnings - $1, last_updated_at = $2, last_updated_by = $3
			WHERE member_id = $4;
		`
		if _, err := tx.Exec(ctx, updateQuery, debit, now, userID, referrerID); err != nil {
			return apperrors.NewAppError(500, "failed to debit referral earnings for member "+referrerID, err)
		}
	}

	clawbackQuery := `
		INSERT INTO commission_clawbacks (clawback_id, commission_id, withdrawal_id, referrer_id, member_id, amount, percent, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, clawback := range clawbacks {
		m := mapping.ToModelCommissionClawback(clawback)
		_, err := tx.Exec(ctx, clawbackQuery,
			m.ClawbackID,
			m.CommissionID,
			m.WithdrawalID,
			m.ReferrerID,
			m.MemberID,
			m.Amount,
			m.Percent,
			m.Status,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				return fmt.Errorf("%w: clawback already applied for commission %s and withdrawal %s",
					apperrors.ErrDuplicate, clawback.CommissionID, clawback.WithdrawalID)
			}
			return fmt.Errorf("failed to insert clawback %s: %w", clawback.ClawbackID, err)
		}
	}

	for _, txn := range txns {
		if err := insertTransactionTx(ctx, tx, txn); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}
