package models

import "time"

// TransactionProduct is one cart line item frozen at checkout time. UnitPrice
// is copied from the product so later catalog edits cannot change history.
type TransactionProduct struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID string    `gorm:"column:transaction_id;type:varchar(30);not null;index"`
	ProductID     int64     `gorm:"column:product_id;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	UnitPrice     int64     `gorm:"column:unit_price;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
