package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/lokapasar/backend/api/responses"
	"github.com/lokapasar/backend/api/validators"
	"github.com/lokapasar/backend/internal/payment"
	"github.com/lokapasar/backend/internal/transactions"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
)

const webhookDedupeTTL = 24 * time.Hour

type webhookStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	WebhookKey(gatewayRef, status string) string
}

// WebhooksController ingests gateway payment notifications. The gateway
// retries aggressively, so every notification is deduplicated before any
// state is touched and non-final statuses are acknowledged without action.
type WebhooksController struct {
	transactions transactions.Service
	store        webhookStore
	logg         *logger.Logger
}

func NewWebhooksController(transactionService transactions.Service, store webhookStore, logg *logger.Logger) *WebhooksController {
	return &WebhooksController{transactions: transactionService, store: store, logg: logg}
}

func (c *WebhooksController) Payment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var notification payment.Notification
	if err := validators.DecodeJSONBody(r, &notification); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	ctx = c.logg.WithFields(ctx, map[string]any{
		"order_id":           notification.OrderID,
		"transaction_status": notification.TransactionStatus,
		"payment_type":       notification.PaymentType,
	})

	if c.store != nil {
		key := c.store.WebhookKey(notification.OrderID, notification.TransactionStatus)
		fresh, err := c.store.SetNX(ctx, key, "1", webhookDedupeTTL)
		if err != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook dedupe"))
			return
		}
		if !fresh {
			c.logg.Info(ctx, "webhook.replayed")
			responses.WriteSuccess(w, map[string]string{"status": "already processed"})
			return
		}
	}

	if !notification.ShouldConfirm() {
		c.logg.Info(ctx, "webhook.ignored")
		responses.WriteSuccess(w, map[string]string{"status": "ignored"})
		return
	}

	confirmed, err := c.transactions.ConfirmPayment(ctx, notification.OrderID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	c.logg.Info(c.logg.WithField(ctx, "confirmed", confirmed), "webhook.confirmed")
	responses.WriteSuccess(w, map[string]any{"status": "ok", "confirmed": confirmed})
}
