package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	memberRepo := newPgxMemberRepository(dbPool)
	investmentRepo := newPgxInvestmentRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	distributionRepo := newPgxDistributionRepository(dbPool)
	withdrawalRepo := newPgxWithdrawalRepository(dbPool)
	commissionRepo := newPgxCommissionRepository(dbPool)
	outboxRepo := newPgxOutboxRepository(dbPool)

	return portsrepo.RepositoryProvider{
		MemberRepo:       memberRepo,
		InvestmentRepo:   investmentRepo,
		LedgerRepo:       ledgerRepo,
		DistributionRepo: distributionRepo,
		WithdrawalRepo:   withdrawalRepo,
		CommissionRepo:   commissionRepo,
		OutboxRepo:       outboxRepo,
	}
}
