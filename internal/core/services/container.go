package services

import (
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/ketepool/member_fund_app/internal/platform/clock"
	"github.com/ketepool/member_fund_app/internal/platform/config"
	"github.com/ketepool/member_fund_app/internal/utils/penalty"
	"github.com/shopspring/decimal"
)

// Container holds all the services and manages their dependencies
type Container struct {
	Ledger       portssvc.LedgerSvcFacade
	Loan         portssvc.LoanSvcFacade
	Clawback     portssvc.ClawbackSvcFacade
	Withdrawal   portssvc.WithdrawalSvcFacade
	Distribution portssvc.DistributionSvcFacade
	Outbox       portssvc.OutboxSvcFacade
}

// ContainerDeps carries everything the service layer needs injected.
type ContainerDeps struct {
	Repos       portsrepo.RepositoryProvider
	Clock       clock.Clock
	Config      *config.Config
	Notifier    portssvc.Notifier
	Investments portssvc.InvestmentSvcFacade
}

// NewContainer creates a new service container with properly initialized
// dependencies
func NewContainer(deps ContainerDeps) *Container {
	container := &Container{}

	container.Ledger = NewLedgerService(
		deps.Repos.LedgerRepo,
		deps.Repos.DistributionRepo,
		deps.Clock,
		deps.Config.DedupWindow,
	)

	container.Loan = NewLoanService(deps.Repos.MemberRepo, deps.Clock)

	container.Clawback = NewClawbackService(
		deps.Repos.CommissionRepo,
		deps.Repos.InvestmentRepo,
		deps.Clock,
	)

	sched := penalty.DefaultSchedule()
	sched.LockInMonths = deps.Config.LockInMonths

	container.Withdrawal = NewWithdrawalService(
		deps.Repos.MemberRepo,
		deps.Repos.InvestmentRepo,
		deps.Repos.WithdrawalRepo,
		container.Ledger,
		container.Clawback,
		deps.Investments,
		deps.Clock,
		sched,
	)

	container.Distribution = NewDistributionService(
		deps.Repos.MemberRepo,
		deps.Repos.InvestmentRepo,
		deps.Repos.DistributionRepo,
		deps.Clock,
		deps.Config.LockInMonths,
		BonusBand{
			Min:     decimal.NewFromFloat(deps.Config.BonusPoolMinPercent),
			Max:     decimal.NewFromFloat(deps.Config.BonusPoolMaxPercent),
			Default: decimal.NewFromFloat(deps.Config.BonusPoolDefaultPercent),
		},
	)

	container.Outbox = NewOutboxService(
		deps.Repos.OutboxRepo,
		deps.Notifier,
		deps.Clock,
		deps.Config.OutboxBatchSize,
	)

	return container
}
