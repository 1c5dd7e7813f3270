package models

import (
	"time"

	"github.com/lokapasar/backend/pkg/enums"
)

// Transaction is one seller's slice of a checkout. Sibling transactions from
// the same checkout share a ParentID and a payment link.
type Transaction struct {
	ID                  string                  `gorm:"column:id;type:varchar(30);primaryKey"`
	ParentID            string                  `gorm:"column:parent_id;type:varchar(30);not null;index"`
	UserID              int64                   `gorm:"column:user_id;not null;index"`
	SellerID            int64                   `gorm:"column:seller_id;not null;index"`
	UserSellerVoucherID *int64                  `gorm:"column:user_seller_voucher_id"`
	TotalDiscount       int64                   `gorm:"column:total_discount;not null;default:0"`
	Status              enums.TransactionStatus `gorm:"column:status;type:smallint;not null;default:1"`
	PaymentLink         string                  `gorm:"column:payment_link;type:varchar(255)"`
	GrossAmount         int64                   `gorm:"column:gross_amount;not null"`
	ShipmentDetail      *ShipmentDetail         `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	Products            []TransactionProduct    `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
