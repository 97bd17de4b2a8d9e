package repositories

import (
	"context"
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
)

// WithdrawalReader defines read operations for withdrawal requests.
type WithdrawalReader interface {
	// FindWithdrawalRequestByID retrieves one request.
	FindWithdrawalRequestByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error)

	// ListWithdrawalRequestsByMember retrieves a member's requests, newest
	// first.
	ListWithdrawalRequestsByMember(ctx context.Context, memberID string, limit int) ([]domain.WithdrawalRequest, error)
}

// WithdrawalWriter persists withdrawal requests and their transitions.
type WithdrawalWriter interface {
	// SaveWithdrawalRequest inserts a new request.
	SaveWithdrawalRequest(ctx context.Context, req domain.WithdrawalRequest) error

	// UpdateWithdrawalRequestStatus transitions a request. completedAt is
	// set only for the COMPLETED transition.
	UpdateWithdrawalRequestStatus(ctx context.Context, requestID string, status domain.WithdrawalStatus, completedAt *time.Time, updatedBy string, updatedAt time.Time) error
}

// WithdrawalRepositoryFacade combines all withdrawal repository interfaces.
type WithdrawalRepositoryFacade interface {
	WithdrawalReader
	WithdrawalWriter
}
