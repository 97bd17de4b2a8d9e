package services

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/dto"
)

// DistributionSvcFacade computes and persists profit distribution runs.
type DistributionSvcFacade interface {
	// DistributeAnnual splits the annual pool across members by tier and
	// time-weighted participation.
	DistributeAnnual(ctx context.Context, req dto.DistributeAnnualRequest) (*dto.DistributionResult, error)

	// DistributeQuarterlyBonus splits the quarterly bonus pool across
	// eligible members only.
	DistributeQuarterlyBonus(ctx context.Context, req dto.DistributeBonusRequest) (*dto.DistributionResult, error)
}
