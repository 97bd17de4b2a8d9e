package mapping

import (
	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/models"
)

// ToModelWithdrawalRequest converts a domain request to a model request
func ToModelWithdrawalRequest(d domain.WithdrawalRequest) models.WithdrawalRequest {
	return models.WithdrawalRequest{
		RequestID:        d.RequestID,
		MemberID:         d.MemberID,
		WithdrawalType:   string(d.WithdrawalType),
		RequestedAmount:  d.RequestedAmount,
		PenaltyAmount:    d.PenaltyAmount,
		NetAmount:        d.NetAmount,
		RequiresApproval: d.RequiresApproval,
		Status:           string(d.Status),
		Reason:           string(d.Reason),
		CompletedAt:      d.CompletedAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWithdrawalRequest converts a model request to a domain request
func ToDomainWithdrawalRequest(m models.WithdrawalRequest) domain.WithdrawalRequest {
	return domain.WithdrawalRequest{
		RequestID:        m.RequestID,
		MemberID:         m.MemberID,
		WithdrawalType:   domain.WithdrawalType(m.WithdrawalType),
		RequestedAmount:  m.RequestedAmount,
		PenaltyAmount:    m.PenaltyAmount,
		NetAmount:        m.NetAmount,
		RequiresApproval: m.RequiresApproval,
		Status:           domain.WithdrawalStatus(m.Status),
		Reason:           domain.WithdrawalReason(m.Reason),
		CompletedAt:      m.CompletedAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainWithdrawalRequestSlice converts model requests to domain requests
func ToDomainWithdrawalRequestSlice(ms []models.WithdrawalRequest) []domain.WithdrawalRequest {
	ds := make([]domain.WithdrawalRequest, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWithdrawalRequest(m)
	}
	return ds
}
