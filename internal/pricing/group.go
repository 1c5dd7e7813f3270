package pricing

import (
	"fmt"

	apperrors "github.com/lokapasar/backend/pkg/errors"
)

// Line is one cart entry after catalog resolution, frozen at its unit price.
type Line struct {
	ProductID int64
	Quantity  int
	UnitPrice int64
}

// SellerGroup accumulates one seller's slice of the cart. Pricing fields are
// fixed at construction; discount and shipment fee arrive from independent
// steps and must both be applied before Finalize will produce a final price.
type SellerGroup struct {
	sellerID        int64
	subtotal        int64
	totalWeightGram int
	totalVolume     int
	itemCount       int
	lines           []Line

	discount       int64
	shipmentFee    int64
	hasDiscount    bool
	hasShipmentFee bool
}

// Summary is the read-only view of a group. Discount, ShipmentFee and
// FinalPrice are nil until the corresponding step has run.
type Summary struct {
	SellerID        int64  `json:"seller_id"`
	Subtotal        int64  `json:"total_price_before_shipment"`
	TotalWeightGram int    `json:"total_weight_gram"`
	TotalVolume     int    `json:"total_volume"`
	ItemCount       int    `json:"item_count"`
	TotalDiscount   *int64 `json:"total_discount,omitempty"`
	ShipmentFee     *int64 `json:"shipment_fee,omitempty"`
	FinalPrice      *int64 `json:"final_price,omitempty"`
}

// NewSellerGroup starts an empty group for one seller.
func NewSellerGroup(sellerID int64) *SellerGroup {
	return &SellerGroup{sellerID: sellerID}
}

// AddLine folds one resolved cart line into the group's totals.
func (g *SellerGroup) AddLine(line Line, weightGram, volume int) {
	g.lines = append(g.lines, line)
	g.subtotal += line.UnitPrice * int64(line.Quantity)
	g.totalWeightGram += weightGram * line.Quantity
	g.totalVolume += volume * line.Quantity
	g.itemCount += line.Quantity
}

func (g *SellerGroup) SellerID() int64      { return g.sellerID }
func (g *SellerGroup) Subtotal() int64      { return g.subtotal }
func (g *SellerGroup) TotalWeightGram() int { return g.totalWeightGram }
func (g *SellerGroup) Lines() []Line        { return g.lines }

// ApplyDiscount records the voucher outcome for this seller. Calling it twice
// is a programming error.
func (g *SellerGroup) ApplyDiscount(amount int64) error {
	if g.hasDiscount {
		return fmt.Errorf("discount already applied for seller %d", g.sellerID)
	}
	if amount < 0 {
		return fmt.Errorf("discount must not be negative, got %d", amount)
	}
	g.discount = amount
	g.hasDiscount = true
	return nil
}

// ApplyShipmentFee records the resolved shipment fee for this seller.
func (g *SellerGroup) ApplyShipmentFee(fee int64) error {
	if g.hasShipmentFee {
		return fmt.Errorf("shipment fee already applied for seller %d", g.sellerID)
	}
	if fee < 0 {
		return fmt.Errorf("shipment fee must not be negative, got %d", fee)
	}
	g.shipmentFee = fee
	g.hasShipmentFee = true
	return nil
}

// Finalize computes the payable amount for this seller. It refuses to run
// until both discount and shipment fee are present so that a final price can
// never be derived from partial data.
func (g *SellerGroup) Finalize() (int64, error) {
	if !g.hasDiscount || !g.hasShipmentFee {
		return 0, apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("seller %d group is not payable yet", g.sellerID))
	}
	final := g.subtotal + g.shipmentFee - g.discount
	if final < 0 {
		return 0, apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("final price for seller %d is negative", g.sellerID))
	}
	return final, nil
}

// Summary exposes the group's current totals. FinalPrice is present only when
// both discount and shipment fee have been applied.
func (g *SellerGroup) Summary() Summary {
	s := Summary{
		SellerID:        g.sellerID,
		Subtotal:        g.subtotal,
		TotalWeightGram: g.totalWeightGram,
		TotalVolume:     g.totalVolume,
		ItemCount:       g.itemCount,
	}
	if g.hasDiscount {
		discount := g.discount
		s.TotalDiscount = &discount
	}
	if g.hasShipmentFee {
		fee := g.shipmentFee
		s.ShipmentFee = &fee
	}
	if g.hasDiscount && g.hasShipmentFee {
		if final, err := g.Finalize(); err == nil {
			s.FinalPrice = &final
		}
	}
	return s
}
