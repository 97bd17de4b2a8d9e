package pgsql

import (
	"context"
	"errors"
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

type PgxWithdrawalRepository struct {
	BaseRepository
}

// newPgxWithdrawalRepository creates a new repository for withdrawal
// requests.
func newPgxWithdrawalRepository(pool *pgxpool.Pool) portsrepo.WithdrawalRepositoryFacade {
	return &PgxWithdrawalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxWithdrawalRepository implements the facade
var _ portsrepo.WithdrawalRepositoryFacade = (*PgxWithdrawalRepository)(nil)

const withdrawalColumns = `request_id, member_id, withdrawal_type, requested_amount, penalty_amount, net_amount, requires_approval, status, reason, completed_at, created_at, created_by, last_updated_at, last_updated_by`

func scanWithdrawalRequest(row pgx.Row) (models.WithdrawalRequest, error) {
	var m models.WithdrawalRequest
	err := row.Scan(
		&m.RequestID,
		&m.MemberID,
		&m.WithdrawalType,
		&m.RequestedAmount,
		&m.PenaltyAmount,
		&m.NetAmount,
		&m.RequiresApproval,
		&m.Status,
		&m.Reason,
		&m.CompletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveWithdrawalRequest inserts a new request.
func (r *PgxWithdrawalRepository) SaveWithdrawalRequest(ctx context.Context, req domain.WithdrawalRequest) error {
	m := mapping.ToModelWithdrawalRequest(req)
	query := `
		INSERT INTO withdrawal_requests (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RequestID,
		m.MemberID,
		m.WithdrawalType,
		m.RequestedAmount,
		m.PenaltyAmount,
		m.NetAmount,
		m.RequiresApproval,
		m.Status,
		m.Reason,
		m.CompletedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert withdrawal request %s: %w", req.RequestID, err)
	}
	return nil
}

// FindWithdrawalRequestByID retrieves one request.
func (r *PgxWithdrawalRepository) FindWithdrawalRequestByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE request_id = $1;`

	m, err := scanWithdrawalRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find withdrawal request by ID %s: %w", requestID, err)
	}

	d := mapping.ToDomainWithdrawalRequest(m)
	return &d, nil
}

// ListWithdrawalRequestsByMember retrieves a member's requests, newest
// first.
func (r *PgxWithdrawalRepository) ListWithdrawalRequestsByMember(ctx context.Context, memberID string, limit int) ([]domain.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawal requests for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var modelRequests []models.WithdrawalRequest
	for rows.Next() {
		m, err := scanWithdrawalRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request row: %w", err)
		}
		modelRequests = append(modelRequests, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawal request rows: %w", err)
	}

	return mapping.ToDomainWithdrawalRequestSlice(modelRequests), nil
}

// UpdateWithdrawalRequestStatus transitions a request. completedAt is set
// only for the COMPLETED transition.
func (r *PgxWithdrawalRepository) UpdateWithdrawalRequestStatus(ctx context.Context, requestID string, status domain.WithdrawalStatus, completedAt *time.Time, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, completed_at = $2, last_updated_by = $3, last_updated_at = $4
		WHERE request_id = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, string(status), completedAt, updatedBy, updatedAt, requestID)
	if err != nil {
		return fmt.Errorf("failed to update status of withdrawal request %s: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
