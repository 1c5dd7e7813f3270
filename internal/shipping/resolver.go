package shipping

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lokapasar/backend/internal/addresses"
	"github.com/lokapasar/backend/internal/pricing"
	"github.com/lokapasar/backend/internal/sellers"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// CourierSelection is the buyer's courier and service choice for one seller.
type CourierSelection struct {
	SellerID int64  `json:"seller_id" validate:"required,gt=0"`
	Courier  string `json:"selected_courier" validate:"required"`
	Service  string `json:"selected_service" validate:"required"`
}

// Quote is the resolved shipment leg for one seller group.
type Quote struct {
	SellerID        int64
	Courier         string
	Service         string
	Cost            int64
	TotalWeightGram int
	UserAddressID   int64
	SellerAddressID int64
}

// Resolver turns courier selections into per-seller shipment quotes. Rate
// lookups for distinct sellers run concurrently; the first failure cancels
// the rest and aborts the checkout.
type Resolver struct {
	addresses addresses.Repository
	sellers   sellers.Repository
	rates     RateClient
}

// NewResolver builds a shipment fee resolver.
func NewResolver(addressRepo addresses.Repository, sellerRepo sellers.Repository, rates RateClient) (*Resolver, error) {
	if addressRepo == nil {
		return nil, fmt.Errorf("addresses repository required")
	}
	if sellerRepo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	if rates == nil {
		return nil, fmt.Errorf("rate client required")
	}
	return &Resolver{addresses: addressRepo, sellers: sellerRepo, rates: rates}, nil
}

// Resolve quotes every selected seller. Selections must cover exactly the
// sellers present in the priced cart; a service tier the rate service does
// not offer fails the whole checkout.
func (r *Resolver) Resolve(ctx context.Context, userAddressID int64, selections []CourierSelection, groups map[int64]*pricing.SellerGroup) (map[int64]Quote, error) {
	if len(selections) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "courier selection must not be empty")
	}

	selected := make(map[int64]CourierSelection, len(selections))
	for _, sel := range selections {
		if _, ok := groups[sel.SellerID]; !ok {
			return nil, apperrors.New(apperrors.CodeValidation,
				fmt.Sprintf("courier selected for seller %d which is not in the cart", sel.SellerID))
		}
		selected[sel.SellerID] = sel
	}
	for sellerID := range groups {
		if _, ok := selected[sellerID]; !ok {
			return nil, apperrors.New(apperrors.CodeValidation,
				fmt.Sprintf("no courier selected for seller %d", sellerID))
		}
	}

	buyerAddress, err := r.addresses.FindByID(ctx, userAddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("address %d not found", userAddressID))
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading buyer address")
	}

	quotes := make(map[int64]Quote, len(selected))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	for sellerID, sel := range selected {
		sellerID, sel := sellerID, sel
		group := groups[sellerID]
		eg.Go(func() error {
			quote, err := r.quoteSeller(egCtx, buyerAddress.DistrictID, userAddressID, sel, group.TotalWeightGram())
			if err != nil {
				return err
			}
			mu.Lock()
			quotes[sellerID] = *quote
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *Resolver) quoteSeller(ctx context.Context, buyerDistrictID, userAddressID int64, sel CourierSelection, weightGram int) (*Quote, error) {
	seller, err := r.sellers.FindByID(ctx, sel.SellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("seller %d not found", sel.SellerID))
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading seller")
	}

	sellerAddress, err := r.addresses.FindByID(ctx, seller.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("address for seller %d not found", sel.SellerID))
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading seller address")
	}

	tiers, err := r.rates.Quote(ctx, QuoteRequest{
		OriginDistrictID: sellerAddress.DistrictID,
		DestDistrictID:   buyerDistrictID,
		WeightGram:       weightGram,
		Courier:          sel.Courier,
	})
	if err != nil {
		return nil, err
	}

	for _, tier := range tiers {
		if tier.Service == sel.Service {
			return &Quote{
				SellerID:        sel.SellerID,
				Courier:         sel.Courier,
				Service:         sel.Service,
				Cost:            tier.Cost,
				TotalWeightGram: weightGram,
				UserAddressID:   userAddressID,
				SellerAddressID: sellerAddress.ID,
			}, nil
		}
	}
	return nil, apperrors.New(apperrors.CodeValidation,
		fmt.Sprintf("courier %s has no service %q for seller %d", sel.Courier, sel.Service, sel.SellerID))
}
