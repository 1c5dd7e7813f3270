package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lokapasar/backend/api/middleware"
	"github.com/lokapasar/backend/api/responses"
	"github.com/lokapasar/backend/api/validators"
	"github.com/lokapasar/backend/internal/checkout"
	"github.com/lokapasar/backend/internal/transactions"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/pagination"
)

// TransactionsController serves checkout creation and the transaction
// lifecycle endpoints.
type TransactionsController struct {
	checkout     checkout.Service
	transactions transactions.Service
	logg         *logger.Logger
}

func NewTransactionsController(checkoutService checkout.Service, transactionService transactions.Service, logg *logger.Logger) *TransactionsController {
	return &TransactionsController{
		checkout:     checkoutService,
		transactions: transactionService,
		logg:         logg,
	}
}

type shipInput struct {
	TrackingNumber string `json:"tracking_number" validate:"required,min=1,max=30"`
}

type listResponse struct {
	Transactions []transactionView `json:"transactions"`
	NextCursor   string            `json:"next_cursor,omitempty"`
}

// Create runs the checkout pipeline and returns the payment link together
// with the per-seller transaction slices.
func (c *TransactionsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input checkout.CreateInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	result, err := c.checkout.Create(ctx, input, checkout.Actor{
		ID:   middleware.ActorIDFromContext(ctx),
		Role: middleware.RoleFromContext(ctx),
	})
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, result)
}

// List returns the caller's transactions newest first, keyset paginated.
func (c *TransactionsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	page, err := pagination.NewPage(limit, r.URL.Query().Get("cursor"))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	items, next, err := c.transactions.List(ctx, c.actor(r), page)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	resp := listResponse{Transactions: toTransactionViews(items)}
	if next != nil {
		resp.NextCursor = next.Encode()
	}
	responses.WriteSuccess(w, resp)
}

// Detail returns one transaction owned by the caller.
func (c *TransactionsController) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transaction, err := c.transactions.Detail(ctx, chi.URLParam(r, "transactionId"), c.actor(r))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, toTransactionView(*transaction))
}

// Prepare moves a paid transaction into processing. Seller only.
func (c *TransactionsController) Prepare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transaction, err := c.transactions.Prepare(ctx, chi.URLParam(r, "transactionId"), c.actor(r))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, toTransactionView(*transaction))
}

// Ship records the tracking number and marks the transaction on the way.
func (c *TransactionsController) Ship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input shipInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	transaction, err := c.transactions.Ship(ctx, chi.URLParam(r, "transactionId"), c.actor(r), input.TrackingNumber)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, toTransactionView(*transaction))
}

// Deliver confirms receipt. Buyer only.
func (c *TransactionsController) Deliver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transaction, err := c.transactions.Deliver(ctx, chi.URLParam(r, "transactionId"), c.actor(r))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, toTransactionView(*transaction))
}

// Cancel aborts the transaction where the lifecycle allows it, refunding
// the buyer when payment had already settled.
func (c *TransactionsController) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transaction, err := c.transactions.Cancel(ctx, chi.URLParam(r, "transactionId"), c.actor(r))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, toTransactionView(*transaction))
}

func (c *TransactionsController) actor(r *http.Request) transactions.Actor {
	ctx := r.Context()
	return transactions.Actor{
		ID:   middleware.ActorIDFromContext(ctx),
		Role: middleware.RoleFromContext(ctx),
	}
}
