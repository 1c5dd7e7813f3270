package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/lokapasar/backend/internal/pricing"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Application is the winning voucher for one seller group.
type Application struct {
	VoucherID int64
	SellerID  int64
	Discount  int64
}

// Resolver validates selected vouchers against the priced cart and picks the
// best discount per seller.
type Resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver builds a voucher resolver.
func NewResolver(repo Repository) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("vouchers repository required")
	}
	return &Resolver{repo: repo, now: time.Now}, nil
}

// Resolve checks every selected voucher and returns at most one Application
// per seller. Any invalid voucher fails the whole checkout: a client that
// presents an unusable voucher must not be silently under-discounted.
func (r *Resolver) Resolve(ctx context.Context, voucherIDs []int64, userID int64, groups map[int64]*pricing.SellerGroup) (map[int64]Application, error) {
	if len(voucherIDs) == 0 {
		return map[int64]Application{}, nil
	}

	vouchers, err := r.repo.FindByIDs(ctx, voucherIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading vouchers")
	}
	byID := make(map[int64]models.UserSellerVoucher, len(vouchers))
	for _, v := range vouchers {
		byID[v.ID] = v
	}

	now := r.now()
	applications := make(map[int64]Application)
	for _, id := range voucherIDs {
		voucher, ok := byID[id]
		if !ok {
			return nil, apperrors.New(apperrors.CodeValidation,
				fmt.Sprintf("voucher %d not found", id))
		}
		group, ok := groups[voucher.SellerID]
		if !ok {
			return nil, apperrors.New(apperrors.CodeValidation,
				fmt.Sprintf("voucher %d targets seller %d which is not in the cart", id, voucher.SellerID))
		}
		if err := validate(voucher, userID, group.Subtotal(), now); err != nil {
			return nil, err
		}

		discount := computeDiscount(voucher, group.Subtotal())
		current, exists := applications[voucher.SellerID]
		if !exists || discount > current.Discount ||
			(discount == current.Discount && voucher.ID < current.VoucherID) {
			applications[voucher.SellerID] = Application{
				VoucherID: voucher.ID,
				SellerID:  voucher.SellerID,
				Discount:  discount,
			}
		}
	}
	return applications, nil
}

func validate(v models.UserSellerVoucher, userID, subtotal int64, now time.Time) error {
	switch {
	case v.UserID != userID:
		return apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("voucher %d does not belong to the caller", v.ID))
	case subtotal < v.MinSpend:
		return apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("voucher %d requires a minimum spend of %d", v.ID, v.MinSpend))
	case v.IsExpired(now):
		return apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("voucher %d is expired", v.ID))
	case v.IsUsed():
		return apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("voucher %d was already used", v.ID))
	}
	return nil
}

// computeDiscount applies the voucher's own rule, capped at the group
// subtotal so a discount can never exceed what the seller is owed.
func computeDiscount(v models.UserSellerVoucher, subtotal int64) int64 {
	var discount int64
	switch v.Kind {
	case enums.VoucherKindPercentage:
		discount = decimal.NewFromInt(subtotal).
			Mul(v.Percent).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
		if v.MaxDiscount > 0 && discount > v.MaxDiscount {
			discount = v.MaxDiscount
		}
	default:
		discount = v.Amount
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
