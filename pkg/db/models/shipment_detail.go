package models

import (
	"time"

	"github.com/lokapasar/backend/pkg/enums"
)

// ShipmentDetail is the 1:1 delivery leg created alongside its Transaction.
// TrackingNumber stays nil until the seller hands the parcel to the courier.
type ShipmentDetail struct {
	ID              int64                `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID   string               `gorm:"column:transaction_id;type:varchar(30);not null;uniqueIndex"`
	Courier         string               `gorm:"column:courier;type:varchar(30);not null"`
	Service         string               `gorm:"column:service;type:varchar(30);not null"`
	TrackingNumber  *string              `gorm:"column:tracking_number;type:varchar(30)"`
	ShipmentCost    int64                `gorm:"column:shipment_cost;not null"`
	TotalWeightGram int                  `gorm:"column:total_weight_gram;not null"`
	UserAddressID   int64                `gorm:"column:user_address_id;not null"`
	SellerAddressID int64                `gorm:"column:seller_address_id;not null"`
	Status          enums.ShipmentStatus `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
