package vouchers

import (
	"context"
	"time"

	apperrors "github.com/lokapasar/backend/pkg/errors"

	"github.com/lokapasar/backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes voucher reads plus the consumption guard.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByIDs(ctx context.Context, ids []int64) ([]models.UserSellerVoucher, error)
	MarkUsed(ctx context.Context, id int64, now time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vouchers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByIDs(ctx context.Context, ids []int64) ([]models.UserSellerVoucher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var vouchers []models.UserSellerVoucher
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// MarkUsed consumes a voucher. The used_at IS NULL guard makes concurrent
// checkouts racing on the same voucher lose deterministically: only the first
// writer's update sticks, the loser gets a conflict and rolls back.
func (r *repository) MarkUsed(ctx context.Context, id int64, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserSellerVoucher{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeConflict, "voucher already used")
	}
	return nil
}
