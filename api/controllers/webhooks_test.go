package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokapasar/backend/internal/transactions"
	"github.com/lokapasar/backend/pkg/logger"
)

type confirmRecorder struct {
	transactions.Service
	confirmed []string
}

func (c *confirmRecorder) ConfirmPayment(_ context.Context, parentID string) (int, error) {
	c.confirmed = append(c.confirmed, parentID)
	return 2, nil
}

type fakeWebhookStore struct {
	seen map[string]bool
}

func (s *fakeWebhookStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.seen[key] {
		return false, nil
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeWebhookStore) WebhookKey(gatewayRef, status string) string {
	return "lp:webhook:" + gatewayRef + ":" + status
}

func postNotification(ctrl *WebhooksController, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ctrl.Payment(rec, req)
	return rec
}

func newWebhookFixture() (*WebhooksController, *confirmRecorder, *fakeWebhookStore) {
	service := &confirmRecorder{}
	store := &fakeWebhookStore{}
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewWebhooksController(service, store, logg), service, store
}

func TestWebhookSettlementConfirmsSiblings(t *testing.T) {
	ctrl, service, _ := newWebhookFixture()

	rec := postNotification(ctrl, `{"order_id":"PRT20250815AAAA0001","transaction_status":"settlement"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"PRT20250815AAAA0001"}, service.confirmed)
}

func TestWebhookReplayIsAcknowledgedWithoutReconfirming(t *testing.T) {
	ctrl, service, _ := newWebhookFixture()
	body := `{"order_id":"PRT20250815AAAA0001","transaction_status":"settlement"}`

	require.Equal(t, http.StatusOK, postNotification(ctrl, body).Code)
	require.Equal(t, http.StatusOK, postNotification(ctrl, body).Code)

	assert.Len(t, service.confirmed, 1)
}

func TestWebhookNonFinalStatusIsIgnored(t *testing.T) {
	ctrl, service, _ := newWebhookFixture()

	rec := postNotification(ctrl, `{"order_id":"PRT20250815AAAA0001","transaction_status":"pending"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, service.confirmed)
}

func TestWebhookChallengedCaptureIsIgnored(t *testing.T) {
	ctrl, service, _ := newWebhookFixture()

	rec := postNotification(ctrl, `{"order_id":"PRT20250815AAAA0001","transaction_status":"capture","fraud_status":"challenge"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, service.confirmed)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	ctrl, service, _ := newWebhookFixture()

	rec := postNotification(ctrl, `{"transaction_status":"settlement"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.confirmed)
}
