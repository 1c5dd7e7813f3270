package transactions

import (
	"context"
	"fmt"

	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence for transactions and their shipment legs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transaction *models.Transaction) error
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	FindByParentID(ctx context.Context, parentID string) ([]models.Transaction, error)
	List(ctx context.Context, role enums.ActorRole, actorID int64, page pagination.Page) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, id string, from, to enums.TransactionStatus) error
	SetShipmentTracking(ctx context.Context, transactionID, trackingNumber string) error
	UpdateShipmentStatus(ctx context.Context, transactionID string, status enums.ShipmentStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transactions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists the transaction together with its shipment detail and line
// items via gorm association writes.
func (r *repository) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Preload("ShipmentDetail").
		Preload("Products").
		Where("id = ?", id).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) FindByParentID(ctx context.Context, parentID string) ([]models.Transaction, error) {
	var siblings []models.Transaction
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Find(&siblings).Error
	if err != nil {
		return nil, err
	}
	return siblings, nil
}

func (r *repository) List(ctx context.Context, role enums.ActorRole, actorID int64, page pagination.Page) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Preload("ShipmentDetail").
		Order("created_at DESC, id DESC").
		Limit(page.Limit)

	switch role {
	case enums.ActorRoleSeller:
		query = query.Where("seller_id = ?", actorID)
	default:
		query = query.Where("user_id = ?", actorID)
	}
	if page.Cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			page.Cursor.CreatedAt, page.Cursor.CreatedAt, page.Cursor.ID)
	}

	var rows []models.Transaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus moves a transaction between two statuses. The WHERE guard on
// the old status makes concurrent transitions lose instead of double-applying.
func (r *repository) UpdateStatus(ctx context.Context, id string, from, to enums.TransactionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("transaction %s is no longer %s", id, from))
	}
	return nil
}

func (r *repository) SetShipmentTracking(ctx context.Context, transactionID, trackingNumber string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ShipmentDetail{}).
		Where("transaction_id = ?", transactionID).
		Updates(map[string]any{
			"tracking_number": trackingNumber,
			"status":          enums.ShipmentStatusShipped,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound,
			fmt.Sprintf("shipment detail for transaction %s not found", transactionID))
	}
	return nil
}

func (r *repository) UpdateShipmentStatus(ctx context.Context, transactionID string, status enums.ShipmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ShipmentDetail{}).
		Where("transaction_id = ?", transactionID).
		Update("status", status).Error
}
