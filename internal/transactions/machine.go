package transactions

import (
	"fmt"

	"github.com/lokapasar/backend/pkg/enums"
	apperrors "github.com/lokapasar/backend/pkg/errors"
)

// Action is a lifecycle operation requested against a transaction.
type Action string

const (
	ActionConfirmPayment Action = "confirm_payment"
	ActionPrepare        Action = "prepare"
	ActionShip           Action = "ship"
	ActionDeliver        Action = "deliver"
	ActionCancel         Action = "cancel"
)

// RoleGateway is the synthetic actor for payment webhook callbacks. It never
// appears in tokens; only the webhook path uses it.
const RoleGateway enums.ActorRole = "gateway"

// Outcome is the effect of an allowed transition.
type Outcome struct {
	Next   enums.TransactionStatus
	Refund bool
}

type transitionKey struct {
	from   enums.TransactionStatus
	role   enums.ActorRole
	action Action
}

// The full transition matrix. Anything absent from this table and from
// rejections is refused with a generic message.
var transitions = map[transitionKey]Outcome{
	{enums.TransactionStatusWaitingForPayment, RoleGateway, ActionConfirmPayment}: {Next: enums.TransactionStatusPaymentSuccess},

	{enums.TransactionStatusPaymentSuccess, enums.ActorRoleSeller, ActionPrepare}: {Next: enums.TransactionStatusPreparedBySeller},
	{enums.TransactionStatusPreparedBySeller, enums.ActorRoleSeller, ActionShip}:  {Next: enums.TransactionStatusOnDelivery},
	{enums.TransactionStatusOnDelivery, enums.ActorRoleUser, ActionDeliver}:       {Next: enums.TransactionStatusDelivered},

	// Cancellation policy. Before payment either party may walk away; after
	// payment a cancellation owes the buyer a refund. Once the seller has
	// started preparing, only the buyer can still cancel.
	{enums.TransactionStatusWaitingForPayment, enums.ActorRoleUser, ActionCancel}:   {Next: enums.TransactionStatusCanceled},
	{enums.TransactionStatusWaitingForPayment, enums.ActorRoleSeller, ActionCancel}: {Next: enums.TransactionStatusCanceled},
	{enums.TransactionStatusPaymentSuccess, enums.ActorRoleUser, ActionCancel}:      {Next: enums.TransactionStatusCanceled, Refund: true},
	{enums.TransactionStatusPaymentSuccess, enums.ActorRoleSeller, ActionCancel}:    {Next: enums.TransactionStatusCanceled, Refund: true},
	{enums.TransactionStatusPreparedBySeller, enums.ActorRoleUser, ActionCancel}:    {Next: enums.TransactionStatusCanceled, Refund: true},
}

// Specific rejection messages for transitions that deserve more than the
// generic refusal.
var rejections = map[transitionKey]string{
	{enums.TransactionStatusPreparedBySeller, enums.ActorRoleSeller, ActionCancel}: "the order is already being prepared; please ask the buyer to contact you to cancel",
	{enums.TransactionStatusOnDelivery, enums.ActorRoleUser, ActionCancel}:         "the order is on delivery and can no longer be canceled",
	{enums.TransactionStatusOnDelivery, enums.ActorRoleSeller, ActionCancel}:       "the order is on delivery and can no longer be canceled",
	{enums.TransactionStatusDelivered, enums.ActorRoleUser, ActionCancel}:          "the order was delivered and can no longer be canceled",
	{enums.TransactionStatusDelivered, enums.ActorRoleSeller, ActionCancel}:        "the order was delivered and can no longer be canceled",
	{enums.TransactionStatusCanceled, enums.ActorRoleUser, ActionCancel}:           "the order is already canceled",
	{enums.TransactionStatusCanceled, enums.ActorRoleSeller, ActionCancel}:         "the order is already canceled",
}

// Decide evaluates the matrix for one requested transition. Violations are
// fatal, never silently ignored.
func Decide(from enums.TransactionStatus, role enums.ActorRole, action Action) (Outcome, error) {
	key := transitionKey{from: from, role: role, action: action}
	if outcome, ok := transitions[key]; ok {
		return outcome, nil
	}
	if msg, ok := rejections[key]; ok {
		return Outcome{}, apperrors.New(apperrors.CodeStateConflict, msg)
	}
	return Outcome{}, apperrors.New(apperrors.CodeStateConflict,
		fmt.Sprintf("%s is not allowed for role %s while the transaction is %s", action, role, from))
}
