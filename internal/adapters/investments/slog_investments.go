package investments

import (
	"context"
	"log/slog"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// SlogInvestmentService records triggered investment transitions in the
// structured log. Investment records are owned by the external investment
// management system; this adapter is the integration point and log-only
// fallback for deployments where that system consumes events instead.
type SlogInvestmentService struct {
	logger *slog.Logger
}

// NewSlogInvestmentService creates a log-backed investment collaborator.
func NewSlogInvestmentService(logger *slog.Logger) *SlogInvestmentService {
	return &SlogInvestmentService{logger: logger}
}

var _ portssvc.InvestmentSvcFacade = (*SlogInvestmentService)(nil)

func (s *SlogInvestmentService) ApplyWithdrawal(_ context.Context, memberID string, amount decimal.Decimal, withdrawalType domain.WithdrawalType, appliedBy string) error {
	s.logger.Info("investment withdrawal triggered",
		slog.String("member_id", memberID),
		slog.String("amount", amount.String()),
		slog.String("withdrawal_type", string(withdrawalType)),
		slog.String("applied_by", appliedBy),
	)
	return nil
}
