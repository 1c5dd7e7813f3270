package controllers

import (
	"net/http"

	"github.com/lokapasar/backend/api/middleware"
	"github.com/lokapasar/backend/api/responses"
	"github.com/lokapasar/backend/api/validators"
	"github.com/lokapasar/backend/internal/checkout"
	"github.com/lokapasar/backend/pkg/logger"
)

// CalculatorsController exposes the cart calculator: the same pricing
// pipeline as checkout, without persistence or a gateway call.
type CalculatorsController struct {
	checkout checkout.Service
	logg     *logger.Logger
}

func NewCalculatorsController(checkoutService checkout.Service, logg *logger.Logger) *CalculatorsController {
	return &CalculatorsController{checkout: checkoutService, logg: logg}
}

func (c *CalculatorsController) Quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input checkout.QuoteInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	result, err := c.checkout.Quote(ctx, input, checkout.Actor{
		ID:   middleware.ActorIDFromContext(ctx),
		Role: middleware.RoleFromContext(ctx),
	})
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}
