package models

import (
	"time"

	"github.com/lokapasar/backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// UserSellerVoucher is a discount grant owned by one user and scoped to one
// seller. UsedAt doubles as the optimistic consumption guard: marking a
// voucher used only succeeds while used_at is still NULL.
type UserSellerVoucher struct {
	ID          int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64             `gorm:"column:user_id;not null;index"`
	SellerID    int64             `gorm:"column:seller_id;not null;index"`
	Kind        enums.VoucherKind `gorm:"column:kind;type:varchar(20);not null"`
	Amount      int64             `gorm:"column:amount;not null;default:0"`
	Percent     decimal.Decimal   `gorm:"column:percent;type:numeric(5,2);not null;default:0"`
	MaxDiscount int64             `gorm:"column:max_discount;not null;default:0"`
	MinSpend    int64             `gorm:"column:min_spend;not null;default:0"`
	ExpiresAt   time.Time         `gorm:"column:expires_at;not null"`
	UsedAt      *time.Time        `gorm:"column:used_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the voucher can no longer be redeemed.
func (v UserSellerVoucher) IsExpired(now time.Time) bool {
	return !v.ExpiresAt.IsZero() && now.After(v.ExpiresAt)
}

// IsUsed reports whether the voucher was already consumed by a checkout.
func (v UserSellerVoucher) IsUsed() bool {
	return v.UsedAt != nil
}
