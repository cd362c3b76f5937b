package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafcart/nursery-backend/pkg/enums"
	"github.com/leafcart/nursery-backend/pkg/types"
)

// PaymentLog is an insert-only audit row. All rows of one checkout attempt
// share CorrelationID, the gateway order id.
type PaymentLog struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	CorrelationID    string                 `gorm:"column:correlation_id;not null;index"`
	EventType        enums.PaymentLogEvent  `gorm:"column:event_type;type:varchar(32);not null;index"`
	Status           enums.PaymentLogStatus `gorm:"column:status;type:varchar(16);not null"`
	OrderID          *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	PendingPaymentID *uuid.UUID             `gorm:"column:pending_payment_id;type:uuid"`
	AmountPaise      *int64                 `gorm:"column:amount_paise"`
	Message          string                 `gorm:"column:message;not null"`
	Payload          types.JSONMap          `gorm:"column:payload;type:jsonb"`
	IPAddress        *string                `gorm:"column:ip_address"`
	UserAgent        *string                `gorm:"column:user_agent"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime;index"`
}

func (l *PaymentLog) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
