package controllers

import (
	"time"

	"github.com/lokapasar/backend/pkg/db/models"
)

// transactionView is the wire shape of a transaction. Database models carry
// no JSON tags, so the API layer owns the serialization explicitly.
type transactionView struct {
	ID                  string              `json:"id"`
	ParentID            string              `json:"parent_id"`
	UserID              int64               `json:"user_id"`
	SellerID            int64               `json:"seller_id"`
	UserSellerVoucherID *int64              `json:"user_seller_voucher_id,omitempty"`
	TotalDiscount       int64               `json:"total_discount"`
	Status              int16               `json:"status"`
	StatusName          string              `json:"status_name"`
	PaymentLink         string              `json:"payment_link,omitempty"`
	GrossAmount         int64               `json:"gross_amount"`
	ShipmentDetail      *shipmentDetailView `json:"shipment_detail,omitempty"`
	Products            []lineItemView      `json:"products,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

type shipmentDetailView struct {
	Courier         string  `json:"courier"`
	Service         string  `json:"service"`
	TrackingNumber  *string `json:"tracking_number,omitempty"`
	ShipmentCost    int64   `json:"shipment_cost"`
	TotalWeightGram int     `json:"total_weight_gram"`
	Status          string  `json:"status"`
}

type lineItemView struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

func toTransactionView(t models.Transaction) transactionView {
	view := transactionView{
		ID:                  t.ID,
		ParentID:            t.ParentID,
		UserID:              t.UserID,
		SellerID:            t.SellerID,
		UserSellerVoucherID: t.UserSellerVoucherID,
		TotalDiscount:       t.TotalDiscount,
		Status:              int16(t.Status),
		StatusName:          t.Status.String(),
		PaymentLink:         t.PaymentLink,
		GrossAmount:         t.GrossAmount,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}

	if t.ShipmentDetail != nil {
		view.ShipmentDetail = &shipmentDetailView{
			Courier:         t.ShipmentDetail.Courier,
			Service:         t.ShipmentDetail.Service,
			TrackingNumber:  t.ShipmentDetail.TrackingNumber,
			ShipmentCost:    t.ShipmentDetail.ShipmentCost,
			TotalWeightGram: t.ShipmentDetail.TotalWeightGram,
			Status:          t.ShipmentDetail.Status.String(),
		}
	}

	for _, product := range t.Products {
		view.Products = append(view.Products, lineItemView{
			ProductID: product.ProductID,
			Quantity:  product.Quantity,
			UnitPrice: product.UnitPrice,
		})
	}

	return view
}

func toTransactionViews(items []models.Transaction) []transactionView {
	views := make([]transactionView, 0, len(items))
	for _, item := range items {
		views = append(views, toTransactionView(item))
	}
	return views
}
