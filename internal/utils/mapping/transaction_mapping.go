package mapping

import (
	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		MemberID:        d.MemberID,
		TransactionType: models.TransactionType(d.TransactionType),
		Amount:          d.Amount,
		Status:          models.TransactionStatus(d.Status),
		Reference:       d.Reference,
		Notes:           d.Notes,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		MemberID:        m.MemberID,
		TransactionType: domain.TransactionType(m.TransactionType),
		Amount:          m.Amount,
		Status:          domain.TransactionStatus(m.Status),
		Reference:       m.Reference,
		Notes:           m.Notes,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
