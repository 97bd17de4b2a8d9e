package mapping

import (
	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/models"
)

// ToModelDistributionBatch converts a domain batch to a model batch
func ToModelDistributionBatch(d domain.ProfitDistributionBatch) models.ProfitDistributionBatch {
	return models.ProfitDistributionBatch{
		BatchID:          d.BatchID,
		PeriodType:       string(d.PeriodType),
		PeriodStart:      d.PeriodStart,
		PeriodEnd:        d.PeriodEnd,
		TotalPool:        d.TotalPool,
		TotalDistributed: d.TotalDistributed,
		Status:           string(d.Status),
		ProcessedAt:      d.ProcessedAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDistributionBatch converts a model batch to a domain batch
func ToDomainDistributionBatch(m models.ProfitDistributionBatch) domain.ProfitDistributionBatch {
	return domain.ProfitDistributionBatch{
		BatchID:          m.BatchID,
		PeriodType:       domain.PeriodType(m.PeriodType),
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		TotalPool:        m.TotalPool,
		TotalDistributed: m.TotalDistributed,
		Status:           domain.BatchStatus(m.Status),
		ProcessedAt:      m.ProcessedAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelProfitShare converts a domain share to a model share
func ToModelProfitShare(d domain.ProfitShare) models.ProfitShare {
	return models.ProfitShare{
		ShareID:       d.ShareID,
		BatchID:       d.BatchID,
		MemberID:      d.MemberID,
		Amount:        d.Amount,
		PoolPercent:   d.PoolPercent,
		Method:        string(d.Method),
		Status:        string(d.Status),
		TransactionID: d.TransactionID,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainProfitShare converts a model share to a domain share
func ToDomainProfitShare(m models.ProfitShare) domain.ProfitShare {
	return domain.ProfitShare{
		ShareID:       m.ShareID,
		BatchID:       m.BatchID,
		MemberID:      m.MemberID,
		Amount:        m.Amount,
		PoolPercent:   m.PoolPercent,
		Method:        domain.CalculationMethod(m.Method),
		Status:        domain.ShareStatus(m.Status),
		TransactionID: m.TransactionID,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainProfitShareSlice converts model shares to domain shares
func ToDomainProfitShareSlice(ms []models.ProfitShare) []domain.ProfitShare {
	ds := make([]domain.ProfitShare, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainProfitShare(m)
	}
	return ds
}
