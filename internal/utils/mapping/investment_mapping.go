package mapping

import (
	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/models"
)

// ToDomainInvestment converts a model Investment to a domain Investment
func ToDomainInvestment(m models.Investment) domain.Investment {
	return domain.Investment{
		InvestmentID: m.InvestmentID,
		MemberID:     m.MemberID,
		Principal:    m.Principal,
		CurrentValue: m.CurrentValue,
		Status:       domain.InvestmentStatus(m.Status),
		LockInStart:  m.LockInStart,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInvestmentSlice converts a slice of model Investments to domain
// Investments
func ToDomainInvestmentSlice(ms []models.Investment) []domain.Investment {
	ds := make([]domain.Investment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvestment(m)
	}
	return ds
}
