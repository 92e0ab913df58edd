package domain

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

type Order struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	PublicRef        string    `json:"public_ref" gorm:"type:text;not null;uniqueIndex:ux_orders_public_ref"`
	ProductID        int64     `json:"product_id" gorm:"not null;index"`
	Amount           int64     `json:"amount" gorm:"not null"`
	Currency         string    `json:"currency" gorm:"type:text;not null"`
	CustomerEmail    string    `json:"customer_email" gorm:"type:text;not null;index"`
	CustomerName     *string   `json:"customer_name,omitempty" gorm:"type:text"`
	PaymentStatus    string    `json:"payment_status" gorm:"type:text;not null;default:pending"`
	GatewayOrderID   *string   `json:"gateway_order_id,omitempty" gorm:"type:text;index"`
	GatewayPaymentID *string   `json:"gateway_payment_id,omitempty" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }
