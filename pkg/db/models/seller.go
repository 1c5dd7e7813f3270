package models

import "time"

// Seller is the merchant side of a transaction.
type Seller struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	StoreName string    `gorm:"column:store_name;type:varchar(255);not null"`
	AddressID int64     `gorm:"column:address_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
