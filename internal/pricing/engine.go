package pricing

import (
	"context"
	"fmt"

	"github.com/lokapasar/backend/internal/catalog"
	apperrors "github.com/lokapasar/backend/pkg/errors"
)

// CartLineItem is the raw cart input before catalog resolution.
type CartLineItem struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// Engine aggregates cart line items into per-seller groups.
type Engine struct {
	catalog catalog.Repository
}

// NewEngine builds a pricing engine over the given catalog.
func NewEngine(repo catalog.Repository) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &Engine{catalog: repo}, nil
}

// Price resolves every cart line against the catalog and groups totals by
// seller. Missing products fail the whole cart.
func (e *Engine) Price(ctx context.Context, items []CartLineItem) (map[int64]*SellerGroup, error) {
	if len(items) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "cart must not be empty")
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation,
				fmt.Sprintf("quantity for product %d must be positive", item.ProductID))
		}
		ids = append(ids, item.ProductID)
	}

	products, err := e.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading products")
	}

	groups := make(map[int64]*SellerGroup)
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("product %d not found", item.ProductID))
		}
		group, ok := groups[product.SellerID]
		if !ok {
			group = NewSellerGroup(product.SellerID)
			groups[product.SellerID] = group
		}
		group.AddLine(Line{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		}, product.WeightGram, product.Volume)
	}
	return groups, nil
}
