package mapping

import (
	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/models"
)

// ToModelNotificationMessage converts a domain message to a model message
func ToModelNotificationMessage(d domain.NotificationMessage) models.NotificationMessage {
	return models.NotificationMessage{
		MessageID:   d.MessageID,
		Topic:       d.Topic,
		MemberID:    d.MemberID,
		Payload:     d.Payload,
		Status:      string(d.Status),
		Attempts:    d.Attempts,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainNotificationMessage converts a model message to a domain message
func ToDomainNotificationMessage(m models.NotificationMessage) domain.NotificationMessage {
	return domain.NotificationMessage{
		MessageID:   m.MessageID,
		Topic:       m.Topic,
		MemberID:    m.MemberID,
		Payload:     m.Payload,
		Status:      domain.NotificationStatus(m.Status),
		Attempts:    m.Attempts,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainNotificationMessageSlice converts model messages to domain
// messages
func ToDomainNotificationMessageSlice(ms []models.NotificationMessage) []domain.NotificationMessage {
	ds := make([]domain.NotificationMessage, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainNotificationMessage(m)
	}
	return ds
}
