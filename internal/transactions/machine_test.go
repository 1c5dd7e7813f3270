package transactions

import (
	"testing"

	"github.com/lokapasar/backend/pkg/enums"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideHappyPath(t *testing.T) {
	t.Parallel()

	steps := []struct {
		from   enums.TransactionStatus
		role   enums.ActorRole
		action Action
		next   enums.TransactionStatus
	}{
		{enums.TransactionStatusWaitingForPayment, RoleGateway, ActionConfirmPayment, enums.TransactionStatusPaymentSuccess},
		{enums.TransactionStatusPaymentSuccess, enums.ActorRoleSeller, ActionPrepare, enums.TransactionStatusPreparedBySeller},
		{enums.TransactionStatusPreparedBySeller, enums.ActorRoleSeller, ActionShip, enums.TransactionStatusOnDelivery},
		{enums.TransactionStatusOnDelivery, enums.ActorRoleUser, ActionDeliver, enums.TransactionStatusDelivered},
	}
	for _, step := range steps {
		outcome, err := Decide(step.from, step.role, step.action)
		require.NoError(t, err, "%s by %s from %s", step.action, step.role, step.from)
		assert.Equal(t, step.next, outcome.Next)
		assert.False(t, outcome.Refund)
	}
}

func TestDecideCancellationMatrix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		from    enums.TransactionStatus
		role    enums.ActorRole
		allowed bool
		refund  bool
	}{
		{"waiting, user", enums.TransactionStatusWaitingForPayment, enums.ActorRoleUser, true, false},
		{"waiting, seller", enums.TransactionStatusWaitingForPayment, enums.ActorRoleSeller, true, false},
		{"paid, user", enums.TransactionStatusPaymentSuccess, enums.ActorRoleUser, true, true},
		{"paid, seller", enums.TransactionStatusPaymentSuccess, enums.ActorRoleSeller, true, true},
		{"prepared, user", enums.TransactionStatusPreparedBySeller, enums.ActorRoleUser, true, true},
		{"prepared, seller", enums.TransactionStatusPreparedBySeller, enums.ActorRoleSeller, false, false},
		{"on delivery, user", enums.TransactionStatusOnDelivery, enums.ActorRoleUser, false, false},
		{"on delivery, seller", enums.TransactionStatusOnDelivery, enums.ActorRoleSeller, false, false},
		{"delivered, user", enums.TransactionStatusDelivered, enums.ActorRoleUser, false, false},
		{"delivered, seller", enums.TransactionStatusDelivered, enums.ActorRoleSeller, false, false},
		{"canceled, user", enums.TransactionStatusCanceled, enums.ActorRoleUser, false, false},
		{"canceled, seller", enums.TransactionStatusCanceled, enums.ActorRoleSeller, false, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			outcome, err := Decide(tc.from, tc.role, ActionCancel)
			if !tc.allowed {
				require.Error(t, err)
				assert.True(t, apperrors.IsCode(err, apperrors.CodeStateConflict))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, enums.TransactionStatusCanceled, outcome.Next)
			assert.Equal(t, tc.refund, outcome.Refund)
		})
	}
}

func TestDecideSellerCancelAfterPrepareHasSpecificMessage(t *testing.T) {
	t.Parallel()

	_, err := Decide(enums.TransactionStatusPreparedBySeller, enums.ActorRoleSeller, ActionCancel)
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Contains(t, typed.Message(), "already being prepared")
}

func TestDecideRejectsUnknownTriples(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from   enums.TransactionStatus
		role   enums.ActorRole
		action Action
	}{
		{enums.TransactionStatusWaitingForPayment, enums.ActorRoleSeller, ActionPrepare},
		{enums.TransactionStatusPaymentSuccess, enums.ActorRoleUser, ActionPrepare},
		{enums.TransactionStatusPaymentSuccess, enums.ActorRoleSeller, ActionShip},
		{enums.TransactionStatusPreparedBySeller, enums.ActorRoleUser, ActionDeliver},
		{enums.TransactionStatusOnDelivery, enums.ActorRoleSeller, ActionDeliver},
		{enums.TransactionStatusDelivered, RoleGateway, ActionConfirmPayment},
		{enums.TransactionStatusPaymentSuccess, RoleGateway, ActionConfirmPayment},
	}
	for _, tc := range cases {
		_, err := Decide(tc.from, tc.role, tc.action)
		require.Error(t, err, "%s by %s from %s", tc.action, tc.role, tc.from)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeStateConflict))
	}
}
