package repositories

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvestmentReader defines read access to investment records. The engine
// never writes investments; status transitions go through the investment
// management service facade.
type InvestmentReader interface {
	// FindInvestmentByID retrieves one investment.
	FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error)

	// FindActiveInvestmentsByMember retrieves a member's active investments.
	FindActiveInvestmentsByMember(ctx context.Context, memberID string) ([]domain.Investment, error)

	// ListActiveInvestmentTotals returns the total active principal per
	// member across the whole investment base.
	ListActiveInvestmentTotals(ctx context.Context) (map[string]decimal.Decimal, error)
}

// InvestmentRepositoryFacade is the full investment repository surface.
type InvestmentRepositoryFacade interface {
	InvestmentReader
}
