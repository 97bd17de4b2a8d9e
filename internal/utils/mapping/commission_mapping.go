package mapping

import (
	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/models"
)

// ToDomainReferralCommission converts a model commission to a domain
// commission
func ToDomainReferralCommission(m models.ReferralCommission) domain.ReferralCommission {
	return domain.ReferralCommission{
		CommissionID: m.CommissionID,
		ReferrerID:   m.ReferrerID,
		MemberID:     m.MemberID,
		InvestmentID: m.InvestmentID,
		Amount:       m.Amount,
		ClawedBack:   m.ClawedBack,
		Status:       domain.CommissionStatus(m.Status),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainReferralCommissionSlice converts model commissions to domain
// commissions
func ToDomainReferralCommissionSlice(ms []models.ReferralCommission) []domain.ReferralCommission {
	ds := make([]domain.ReferralCommission, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainReferralCommission(m)
	}
	return ds
}

// ToModelCommissionClawback converts a domain clawback to a model clawback
func ToModelCommissionClawback(d domain.CommissionClawback) models.CommissionClawback {
	return models.CommissionClawback{
		ClawbackID:   d.ClawbackID,
		CommissionID: d.CommissionID,
		WithdrawalID: d.WithdrawalID,
		ReferrerID:   d.ReferrerID,
		MemberID:     d.MemberID,
		Amount:       d.Amount,
		Percent:      d.Percent,
		Status:       string(d.Status),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}
