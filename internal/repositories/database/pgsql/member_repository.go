package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ketepool/member_fund_app/internal/apperrors"
	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	"github.com/ketepool/member_fund_app/internal/models"
	"github.com/ketepool/member_fund_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxMemberRepository struct {
	BaseRepository
}

// newPgxMemberRepository creates a new repository for member, tier and loan
// data.
func newPgxMemberRepository(pool *pgxpool.Pool) portsrepo.MemberRepositoryFacade {
	return &PgxMemberRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxMemberRepository implements portsrepo.MemberRepositoryFacade
var _ portsrepo.MemberRepositoryFacade = (*PgxMemberRepository)(nil)

const memberColumns = `member_id, current_tier_id, joined_at, loan_balance, loan_issued_total, loan_repaid_total, referral_earnings, created_at, created_by, last_updated_at, last_updated_by`

func scanMember(row pgx.Row) (models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.MemberID,
		&m.CurrentTierID,
		&m.JoinedAt,
		&m.LoanBalance,
		&m.LoanIssuedTotal,
		&m.LoanRepaidTotal,
		&m.ReferralEarnings,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindMemberByID retrieves a member by its ID.
func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = $1;`

	modelMember, err := scanMember(r.Pool.QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member by ID %s: %w", memberID, err)
	}

	domainMember := mapping.ToDomainMember(modelMember)
	return &domainMember, nil
}

// ListActiveMembers retrieves every member, ordered by ID for deterministic
// distribution runs.
func (r *PgxMemberRepository) ListActiveMembers(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY member_id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var modelMembers []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		modelMembers = append(modelMembers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return mapping.ToDomainMemberSlice(modelMembers), nil
}

// FindTierByID retrieves a tier definition by its ID.
func (r *PgxMemberRepository) FindTierByID(ctx context.Context, tierID string) (*domain.InvestmentTier, error) {
	query := `
		SELECT tier_id, name, annual_rate_percent, penalty_reduction_percent, created_at, created_by, last_updated_at, last_updated_by
		FROM investment_tiers
		WHERE tier_id = $1;
	`
	var m models.InvestmentTier
	err := r.Pool.QueryRow(ctx, query, tierID).Scan(
		&m.TierID,
		&m.Name,
		&m.AnnualRatePercent,
		&m.PenaltyReductionPercent,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tier by ID %s: %w", tierID, err)
	}

	domainTier := mapping.ToDomainTier(m)
	return &domainTier, nil
}

// FindTiersByIDs retrieves multiple tier definitions keyed by ID.
func (r *PgxMemberRepository) FindTiersByIDs(ctx context.Context, tierIDs []string) (map[string]domain.InvestmentTier, error) {
	if len(tierIDs) == 0 {
		return map[string]domain.InvestmentTier{}, nil
	}

	query := `
		SELECT tier_id, name, annual_rate_percent, penalty_reduction_percent, created_at, created_by, last_updated_at, last_updated_by
		FROM investment_tiers
		WHERE tier_id = ANY($1);
	`
	rows, err := r.Pool.Query(ctx, query, tierIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiers by IDs: %w", err)
	}
	defer rows.Close()

	tiers := make(map[string]domain.InvestmentTier)
	for rows.Next() {
		var m models.InvestmentTier
		err := rows.Scan(
			&m.TierID,
			&m.Name,
			&m.AnnualRatePercent,
			&m.PenaltyReductionPercent,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tier row: %w", err)
		}
		tiers[m.TierID] = mapping.ToDomainTier(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tier rows: %w", err)
	}

	return tiers, nil
}

// ListTierChanges retrieves a member's tier-change log ordered by effective
// date ascending.
func (r *PgxMemberRepository) ListTierChanges(ctx context.Context, memberID string) ([]domain.TierChange, error) {
	query := `
		SELECT change_id, member_id, tier_id, effective_from
		FROM member_tier_changes
		WHERE member_id = $1
		ORDER BY effective_from ASC;
	`
	rows, err := r.Pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tier changes for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var changes []domain.TierChange
	for rows.Next() {
		var m models.TierChange
		if err := rows.Scan(&m.ChangeID, &m.MemberID, &m.TierID, &m.EffectiveFrom); err != nil {
			return nil, fmt.Errorf("failed to scan tier change row: %w", err)
		}
		changes = append(changes, mapping.ToDomainTierChange(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tier change rows: %w", err)
	}

	return changes, nil
}

// lockMemberLoanState locks the member row and returns its current loan
// balance.
func lockMemberLoanState(ctx context.Context, tx pgx.Tx, memberID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT loan_balance FROM members WHERE member_id = $1 FOR UPDATE;`, memberID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to lock member %s: %w", memberID, err)
	}
	return balance, nil
}

// SaveLoanIssue increments the member's loan counters, inserts the ledger
// credit and enqueues the outbox notification within one DB transaction.
func (r *PgxMemberRepository) SaveLoanIssue(ctx context.Context, memberID string, amount decimal.Decimal, txn domain.Transaction, note domain.NotificationMessage) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockMemberLoanState(ctx, tx, memberID); err != nil {
		return err
	}

	updateQuery := `
		UPDATE members
		SET loan_balance = loan_balance + $1,
		    loan_issued_total = loan_issued_total + $1,
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE member_id = $4;
	`
	if _, err := tx.Exec(ctx, updateQuery, amount, txn.CreatedAt, txn.CreatedBy, memberID); err != nil {
		return apperrors.NewAppError(500, "failed to update loan counters for member "+memberID, err)
	}

	if err := insertTransactionTx(ctx, tx, txn); err != nil {
		return err
	}
	if err := insertNotificationTx(ctx, tx, note); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// SaveEarningsApplication applies an intercepted repayment against the loan
// balance and inserts the associated ledger entries atomically.
func (r *PgxMemberRepository) SaveEarningsApplication(ctx context.Context, memberID string, repayment decimal.Decimal, txns []domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	balance, err := lockMemberLoanState(ctx, tx, memberID)
	if err != nil {
		return err
	}

	if repayment.IsPositive() {
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
		var updatedAt = txns[0].LastUpdatedAt
		var updatedBy = txns[0].LastUpdatedBy
		if _, err := tx.Exec(ctx, updateQuery, repayment, updatedAt, updatedBy, memberID); err != nil {
			return apperrors.NewAppError(500, "failed to apply loan repayment for member "+memberID, err)
		}
	}

	for _, txn := range txns {
		if err := insertTransactionTx(ctx, tx, txn); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}
