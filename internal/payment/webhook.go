package payment

// Notification is the gateway callback body. OrderID carries the parent id
// the intent was created with.
type Notification struct {
	OrderID           string `json:"order_id" validate:"required"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

// ShouldConfirm reports whether the notification represents a completed
// payment. Capture with a challenged fraud status does not confirm.
func (n Notification) ShouldConfirm() bool {
	switch n.TransactionStatus {
	case "settlement":
		return true
	case "capture":
		return n.FraudStatus == "" || n.FraudStatus == "accept"
	default:
		return false
	}
}
