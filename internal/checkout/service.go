package checkout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lokapasar/backend/internal/payment"
	"github.com/lokapasar/backend/internal/pricing"
	"github.com/lokapasar/backend/internal/sellers"
	"github.com/lokapasar/backend/internal/shipping"
	"github.com/lokapasar/backend/internal/transactions"
	"github.com/lokapasar/backend/internal/users"
	"github.com/lokapasar/backend/internal/vouchers"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/metrics"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Pricer turns cart lines into per-seller groups.
type Pricer interface {
	Price(ctx context.Context, items []pricing.CartLineItem) (map[int64]*pricing.SellerGroup, error)
}

// VoucherResolver validates selected vouchers and picks one discount per seller.
type VoucherResolver interface {
	Resolve(ctx context.Context, voucherIDs []int64, userID int64, groups map[int64]*pricing.SellerGroup) (map[int64]vouchers.Application, error)
}

// ShipmentResolver quotes the shipment leg for every seller in the cart.
type ShipmentResolver interface {
	Resolve(ctx context.Context, userAddressID int64, selections []shipping.CourierSelection, groups map[int64]*pricing.SellerGroup) (map[int64]shipping.Quote, error)
}

// Service is the order orchestrator.
type Service interface {
	Create(ctx context.Context, input CreateInput, actor Actor) (*Result, error)
	Quote(ctx context.Context, input QuoteInput, actor Actor) (*QuoteResult, error)
}

type service struct {
	pricer       Pricer
	vouchers     VoucherResolver
	voucherRepo  vouchers.Repository
	shipping     ShipmentResolver
	gateway      payment.Gateway
	transactions transactions.Repository
	sellers      sellers.Repository
	users        users.Repository
	tx           txRunner
	logg         *logger.Logger
	now          func() time.Time
}

// NewService wires the checkout pipeline. Every collaborator is injected so
// the orchestration is testable in isolation.
func NewService(
	pricer Pricer,
	voucherResolver VoucherResolver,
	voucherRepo vouchers.Repository,
	shipmentResolver ShipmentResolver,
	gateway payment.Gateway,
	transactionRepo transactions.Repository,
	sellerRepo sellers.Repository,
	userRepo users.Repository,
	tx txRunner,
	logg *logger.Logger,
) (Service, error) {
	switch {
	case pricer == nil:
		return nil, fmt.Errorf("pricer required")
	case voucherResolver == nil:
		return nil, fmt.Errorf("voucher resolver required")
	case voucherRepo == nil:
		return nil, fmt.Errorf("voucher repository required")
	case shipmentResolver == nil:
		return nil, fmt.Errorf("shipment resolver required")
	case gateway == nil:
		return nil, fmt.Errorf("payment gateway required")
	case transactionRepo == nil:
		return nil, fmt.Errorf("transactions repository required")
	case sellerRepo == nil:
		return nil, fmt.Errorf("sellers repository required")
	case userRepo == nil:
		return nil, fmt.Errorf("users repository required")
	case tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case logg == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		pricer:       pricer,
		vouchers:     voucherResolver,
		voucherRepo:  voucherRepo,
		shipping:     shipmentResolver,
		gateway:      gateway,
		transactions: transactionRepo,
		sellers:      sellerRepo,
		users:        userRepo,
		tx:           tx,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// Create runs the full checkout: price, discount, quote shipping, finalize,
// create one payment intent, then persist every per-seller transaction in a
// single unit of work.
func (s *service) Create(ctx context.Context, input CreateInput, actor Actor) (*Result, error) {
	result, err := s.create(ctx, input, actor)
	if err != nil {
		metrics.ObserveCheckout(metrics.OutcomeError, 0)
		return nil, err
	}
	metrics.ObserveCheckout(metrics.OutcomeOK, len(result.Transactions))
	return result, nil
}

func (s *service) create(ctx context.Context, input CreateInput, actor Actor) (*Result, error) {
	// Preconditions, in order. The first failure short-circuits.
	if actor.Role != enums.ActorRoleUser {
		return nil, apperrors.New(apperrors.CodeValidation, "only buyers can create transactions")
	}
	exists, err := s.users.Exists(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "checking buyer")
	}
	if !exists {
		return nil, apperrors.New(apperrors.CodeValidation, "buyer account not found")
	}
	if len(input.Carts) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "cart must not be empty")
	}
	if input.UserAddressID <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "shipping address is required")
	}
	if len(input.CourierSelections) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "courier selection must not be empty")
	}

	groups, err := s.pricer.Price(ctx, input.Carts)
	if err != nil {
		return nil, err
	}

	applications, err := s.vouchers.Resolve(ctx, input.SelectedVoucherIDs, actor.ID, groups)
	if err != nil {
		return nil, err
	}

	quotes, err := s.shipping.Resolve(ctx, input.UserAddressID, input.CourierSelections, groups)
	if err != nil {
		return nil, err
	}

	type finalized struct {
		group       *pricing.SellerGroup
		quote       shipping.Quote
		application *vouchers.Application
		finalPrice  int64
	}

	sellerIDs := sortedSellerIDs(groups)
	finals := make([]finalized, 0, len(sellerIDs))
	var aggregate int64
	for _, sellerID := range sellerIDs {
		group := groups[sellerID]
		entry := finalized{group: group, quote: quotes[sellerID]}

		var discount int64
		if app, ok := applications[sellerID]; ok {
			discount = app.Discount
			entry.application = &app
		}
		if err := group.ApplyDiscount(discount); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "applying discount")
		}
		if err := group.ApplyShipmentFee(entry.quote.Cost); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "applying shipment fee")
		}
		final, err := group.Finalize()
		if err != nil {
			return nil, err
		}
		entry.finalPrice = final
		aggregate += final
		finals = append(finals, entry)
	}

	now := s.now()
	parentID := newParentID(now)

	// One intent for the whole cart. If persistence fails after this point
	// the link stays valid gateway-side with no rows behind it; see the log
	// line below.
	intent, err := s.gateway.CreateIntent(ctx, aggregate, parentID)
	if err != nil {
		return nil, err
	}

	result := &Result{ParentID: parentID, PaymentLink: intent.PaymentLink}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		transactionRepo := s.transactions.WithTx(tx)
		sellerRepo := s.sellers.WithTx(tx)
		voucherRepo := s.voucherRepo.WithTx(tx)

		for _, entry := range finals {
			sellerID := entry.group.SellerID()
			exists, err := sellerRepo.Exists(ctx, sellerID)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeInternal, err, "checking seller")
			}
			if !exists {
				return apperrors.New(apperrors.CodeValidation,
					fmt.Sprintf("seller %d no longer exists", sellerID))
			}

			transaction := &models.Transaction{
				ID:            newTransactionID(now),
				ParentID:      parentID,
				UserID:        actor.ID,
				SellerID:      sellerID,
				TotalDiscount: 0,
				Status:        enums.TransactionStatusWaitingForPayment,
				PaymentLink:   intent.PaymentLink,
				GrossAmount:   entry.finalPrice,
				ShipmentDetail: &models.ShipmentDetail{
					Courier:         entry.quote.Courier,
					Service:         entry.quote.Service,
					ShipmentCost:    entry.quote.Cost,
					TotalWeightGram: entry.quote.TotalWeightGram,
					UserAddressID:   entry.quote.UserAddressID,
					SellerAddressID: entry.quote.SellerAddressID,
					Status:          enums.ShipmentStatusPending,
				},
			}
			for _, line := range entry.group.Lines() {
				transaction.Products = append(transaction.Products, models.TransactionProduct{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
					UnitPrice: line.UnitPrice,
				})
			}
			if entry.application != nil {
				transaction.UserSellerVoucherID = &entry.application.VoucherID
				transaction.TotalDiscount = entry.application.Discount
			}

			if err := transactionRepo.Create(ctx, transaction); err != nil {
				return apperrors.Wrap(apperrors.CodeInternal, err, "persisting transaction")
			}

			result.Transactions = append(result.Transactions, TransactionSummary{
				TransactionID: transaction.ID,
				SellerID:      sellerID,
				GrossAmount:   transaction.GrossAmount,
				TotalDiscount: transaction.TotalDiscount,
				ShipmentCost:  entry.quote.Cost,
				Status:        transaction.Status.String(),
			})
		}

		// Consume the winning vouchers inside the same unit of work so a
		// concurrent checkout cannot reuse them.
		for _, entry := range finals {
			if entry.application == nil {
				continue
			}
			if err := voucherRepo.MarkUsed(ctx, entry.application.VoucherID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"parent_id":    parentID,
			"payment_link": intent.PaymentLink,
		})
		s.logg.Error(lctx, "checkout rolled back after payment intent was created; the link has no backing transactions", err)
		return nil, err
	}

	lctx := s.logg.WithField(ctx, "parent_id", parentID)
	s.logg.Info(lctx, fmt.Sprintf("checkout created %d transactions", len(result.Transactions)))
	return result, nil
}

// Quote prices the cart and, when vouchers or couriers are selected, layers
// their outcomes on top. Nothing is persisted and no payment intent is made;
// final prices appear only for groups where discount and fee are both known.
func (s *service) Quote(ctx context.Context, input QuoteInput, actor Actor) (*QuoteResult, error) {
	if actor.Role != enums.ActorRoleUser {
		return nil, apperrors.New(apperrors.CodeValidation, "only buyers can quote a cart")
	}

	groups, err := s.pricer.Price(ctx, input.Carts)
	if err != nil {
		return nil, err
	}

	hasVouchers := len(input.SelectedVoucherIDs) > 0
	hasCouriers := len(input.CourierSelections) > 0

	var applications map[int64]vouchers.Application
	if hasVouchers {
		applications, err = s.vouchers.Resolve(ctx, input.SelectedVoucherIDs, actor.ID, groups)
		if err != nil {
			return nil, err
		}
	}

	var quotes map[int64]shipping.Quote
	if hasCouriers {
		if input.UserAddressID <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "shipping address is required to quote couriers")
		}
		quotes, err = s.shipping.Resolve(ctx, input.UserAddressID, input.CourierSelections, groups)
		if err != nil {
			return nil, err
		}
	}

	result := &QuoteResult{}
	var grandTotal int64
	allFinal := hasVouchers || hasCouriers
	for _, sellerID := range sortedSellerIDs(groups) {
		group := groups[sellerID]
		if hasVouchers {
			var discount int64
			if app, ok := applications[sellerID]; ok {
				discount = app.Discount
			}
			if err := group.ApplyDiscount(discount); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInternal, err, "applying discount")
			}
		}
		if hasCouriers {
			if err := group.ApplyShipmentFee(quotes[sellerID].Cost); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInternal, err, "applying shipment fee")
			}
		}
		summary := group.Summary()
		if summary.FinalPrice != nil {
			grandTotal += *summary.FinalPrice
		} else {
			allFinal = false
		}
		result.Groups = append(result.Groups, summary)
	}
	if allFinal && hasVouchers && hasCouriers {
		result.GrandTotal = &grandTotal
	}
	return result, nil
}

func sortedSellerIDs(groups map[int64]*pricing.SellerGroup) []int64 {
	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
