package models

import "time"

// Product carries the catalog attributes the pricing engine consumes.
type Product struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SellerID   int64     `gorm:"column:seller_id;not null;index"`
	Name       string    `gorm:"column:name;type:varchar(255);not null"`
	Price      int64     `gorm:"column:price;not null"`
	WeightGram int       `gorm:"column:weight_gram;not null"`
	Volume     int       `gorm:"column:volume;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
