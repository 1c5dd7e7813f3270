package models

import (
	"time"

	"github.com/lokapasar/backend/pkg/enums"
)

// Address resolves an owner to the district used for rate lookups.
type Address struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerRole  enums.ActorRole `gorm:"column:owner_role;type:varchar(10);not null"`
	OwnerID    int64           `gorm:"column:owner_id;not null;index"`
	DistrictID int64           `gorm:"column:district_id;not null"`
	Detail     string          `gorm:"column:detail;type:text"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
