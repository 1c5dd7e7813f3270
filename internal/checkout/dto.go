package checkout

import (
	"github.com/lokapasar/backend/internal/pricing"
	"github.com/lokapasar/backend/internal/shipping"
	"github.com/lokapasar/backend/pkg/enums"
)

// Actor identifies the authenticated caller.
type Actor struct {
	ID   int64
	Role enums.ActorRole
}

// CreateInput is the checkout request body.
type CreateInput struct {
	Carts              []pricing.CartLineItem      `json:"carts" validate:"required,min=1,dive"`
	SelectedVoucherIDs []int64                     `json:"selected_user_voucher_ids" validate:"omitempty,dive,gt=0"`
	UserAddressID      int64                       `json:"user_selected_address_id" validate:"required,gt=0"`
	CourierSelections  []shipping.CourierSelection `json:"selected_courier" validate:"required,min=1,dive"`
}

// QuoteInput is the calculator request body. Vouchers and couriers are
// optional: a quote without them simply carries no final price.
type QuoteInput struct {
	Carts              []pricing.CartLineItem      `json:"carts" validate:"required,min=1,dive"`
	SelectedVoucherIDs []int64                     `json:"selected_user_voucher_ids" validate:"omitempty,dive,gt=0"`
	UserAddressID      int64                       `json:"user_selected_address_id" validate:"omitempty,gt=0"`
	CourierSelections  []shipping.CourierSelection `json:"selected_courier" validate:"omitempty,dive"`
}

// TransactionSummary is the per-seller slice returned after checkout.
type TransactionSummary struct {
	TransactionID string `json:"transaction_id"`
	SellerID      int64  `json:"seller_id"`
	GrossAmount   int64  `json:"gross_amount"`
	TotalDiscount int64  `json:"total_discount"`
	ShipmentCost  int64  `json:"shipment_cost"`
	Status        string `json:"status"`
}

// Result is the checkout response.
type Result struct {
	ParentID     string               `json:"parent_id"`
	PaymentLink  string               `json:"payment_link"`
	Transactions []TransactionSummary `json:"transactions"`
}

// QuoteResult is the calculator response: the per-seller breakdown without
// any persistence or gateway call.
type QuoteResult struct {
	Groups     []pricing.Summary `json:"groups"`
	GrandTotal *int64            `json:"grand_total,omitempty"`
}
