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

type PgxInvestmentRepository struct {
	BaseRepository
}

// newPgxInvestmentRepository creates a new read-only repository for
// investment data.
func newPgxInvestmentRepository(pool *pgxpool.Pool) portsrepo.InvestmentRepositoryFacade {
	return &PgxInvestmentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInvestmentRepository implements the facade
var _ portsrepo.InvestmentRepositoryFacade = (*PgxInvestmentRepository)(nil)

const investmentColumns = `investment_id, member_id, principal, current_value, status, lock_in_start, created_at, created_by, last_updated_at, last_updated_by`

func scanInvestment(row pgx.Row) (models.Investment, error) {
	var m models.Investment
	err := row.Scan(
		&m.InvestmentID,
		&m.MemberID,
		&m.Principal,
		&m.CurrentValue,
		&m.Status,
		&m.LockInStart,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindInvestmentByID retrieves an investment by its ID.
func (r *PgxInvestmentRepository) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investment_id = $1;`

	m, err := scanInvestment(r.Pool.QueryRow(ctx, query, investmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find investment by ID %s: %w", investmentID, err)
	}

	d := mapping.ToDomainInvestment(m)
	return &d, nil
}

// FindActiveInvestmentsByMember retrieves a member's active investments,
// oldest lock-in first.
func (r *PgxInvestmentRepository) FindActiveInvestmentsByMember(ctx context.Context, memberID string) ([]domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE member_id = $1 AND status = $2
		ORDER BY lock_in_start ASC;
	`
	rows, err := r.Pool.Query(ctx, query, memberID, models.InvestmentActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active investments for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var modelInvestments []models.Investment
	for rows.Next() {
		m, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment row: %w", err)
		}
		modelInvestments = append(modelInvestments, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment rows: %w", err)
	}

	return mapping.ToDomainInvestmentSlice(modelInvestments), nil
}

// ListActiveInvestmentTotals aggregates the active principal per member
// across the whole investment base.
func (r *PgxInvestmentRepository) ListActiveInvestmentTotals(ctx context.Context) (map[string]decimal.Decimal, error) {
	query := `
		SELECT member_id, COALESCE(SUM(principal), 0)
		FROM investments
		WHERE status = $1
		GROUP BY member_id;
	`
	rows, err := r.Pool.Query(ctx, query, models.InvestmentActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active investment totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var memberID string
		var total decimal.Decimal
		if err := rows.Scan(&memberID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan investment total row: %w", err)
		}
		totals[memberID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment total rows: %w", err)
	}

	return totals, nil
}
