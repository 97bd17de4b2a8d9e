package repositories

// RepositoryProvider bundles every repository facade for injection into the
// service container.
type RepositoryProvider struct {
	MemberRepo       MemberRepositoryFacade
	InvestmentRepo   InvestmentRepositoryFacade
	LedgerRepo       LedgerRepositoryFacade
	DistributionRepo DistributionRepositoryFacade
	WithdrawalRepo   WithdrawalRepositoryFacade
	CommissionRepo   CommissionRepositoryFacade
	OutboxRepo       OutboxRepositoryFacade
}
