package mapping

import (
	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/models"
)

// ToModelMember converts a domain Member to a model Member
func ToModelMember(d domain.Member) models.Member {
	return models.Member{
		MemberID:         d.MemberID,
		CurrentTierID:    d.CurrentTierID,
		JoinedAt:         d.JoinedAt,
		LoanBalance:      d.LoanBalance,
		LoanIssuedTotal:  d.LoanIssuedTotal,
		LoanRepaidTotal:  d.LoanRepaidTotal,
		ReferralEarnings: d.ReferralEarnings,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMember converts a model Member to a domain Member
func ToDomainMember(m models.Member) domain.Member {
	return domain.Member{
		MemberID:         m.MemberID,
		CurrentTierID:    m.CurrentTierID,
		JoinedAt:         m.JoinedAt,
		LoanBalance:      m.LoanBalance,
		LoanIssuedTotal:  m.LoanIssuedTotal,
		LoanRepaidTotal:  m.LoanRepaidTotal,
		ReferralEarnings: m.ReferralEarnings,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMemberSlice converts a slice of model Members to domain Members
func ToDomainMemberSlice(ms []models.Member) []domain.Member {
	ds := make([]domain.Member, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMember(m)
	}
	return ds
}

// ToDomainTier converts a model InvestmentTier to a domain InvestmentTier
func ToDomainTier(m models.InvestmentTier) domain.InvestmentTier {
	return domain.InvestmentTier{
		TierID:                  m.TierID,
		Name:                    m.Name,
		AnnualRatePercent:       m.AnnualRatePercent,
		PenaltyReductionPercent: m.PenaltyReductionPercent,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTierChange converts a model TierChange to a domain TierChange
func ToDomainTierChange(m models.TierChange) domain.TierChange {
	return domain.TierChange{
		ChangeID:      m.ChangeID,
		MemberID:      m.MemberID,
		TierID:        m.TierID,
		EffectiveFrom: m.EffectiveFrom,
	}
}
