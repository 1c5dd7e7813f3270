package enums

import "fmt"

// TransactionStatus tracks the lifecycle of a per-seller transaction.
type TransactionStatus int16

const (
	TransactionStatusWaitingForPayment TransactionStatus = 1
	TransactionStatusPaymentSuccess    TransactionStatus = 2
	TransactionStatusPreparedBySeller  TransactionStatus = 3
	TransactionStatusOnDelivery        TransactionStatus = 4
	TransactionStatusDelivered         TransactionStatus = 5
	TransactionStatusCanceled          TransactionStatus = 6
)

var transactionStatusNames = map[TransactionStatus]string{
	TransactionStatusWaitingForPayment: "WAITING_FOR_PAYMENT",
	TransactionStatusPaymentSuccess:    "PAYMENT_SUCCESS",
	TransactionStatusPreparedBySeller:  "PREPARED_BY_SELLER",
	TransactionStatusOnDelivery:        "ON_DELIVERY",
	TransactionStatusDelivered:         "DELIVERED",
	TransactionStatusCanceled:          "CANCELED",
}

// String implements fmt.Stringer.
func (s TransactionStatus) String() string {
	if name, ok := transactionStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int16(s))
}

// IsValid reports whether the value is a known TransactionStatus.
func (s TransactionStatus) IsValid() bool {
	_, ok := transactionStatusNames[s]
	return ok
}

// IsTerminal reports whether the status admits no further transitions.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusDelivered || s == TransactionStatusCanceled
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value int16) (TransactionStatus, error) {
	status := TransactionStatus(value)
	if !status.IsValid() {
		return 0, fmt.Errorf("invalid transaction status %d", value)
	}
	return status, nil
}
