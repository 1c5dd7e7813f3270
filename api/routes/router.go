package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lokapasar/backend/api/controllers"
	"github.com/lokapasar/backend/api/middleware"
	"github.com/lokapasar/backend/api/responses"
	"github.com/lokapasar/backend/pkg/config"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/metrics"
	pkgredis "github.com/lokapasar/backend/pkg/redis"
)

// Controllers groups everything the router mounts.
type Controllers struct {
	Health       *controllers.HealthController
	Transactions *controllers.TransactionsController
	Calculators  *controllers.CalculatorsController
	Webhooks     *controllers.WebhooksController
}

// NewRouter assembles the HTTP surface. Probes, metrics and the gateway
// webhook stay outside the authenticated group; everything under /api/v1
// requires a bearer token and runs through the idempotency layer.
func NewRouter(cfg *config.Config, ctrl Controllers, idempotencyStore pkgredis.IdempotencyStore, logg *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.CORS())
	r.Use(middleware.Logging(logg))

	r.Get("/health/live", ctrl.Health.Live)
	r.Get("/health/ready", ctrl.Health.Ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Gateway callbacks are authenticated by payload inspection and
		// replay-guarded, not by a bearer token.
		r.Post("/webhooks/payment", ctrl.Webhooks.Payment)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			buyerOnly := middleware.RequireRole(enums.ActorRoleUser, logg)
			sellerOnly := middleware.RequireRole(enums.ActorRoleSeller, logg)

			r.Route("/transactions", func(r chi.Router) {
				r.With(buyerOnly).Post("/", ctrl.Transactions.Create)
				r.Get("/", ctrl.Transactions.List)
				r.Get("/{transactionId}", ctrl.Transactions.Detail)
				r.With(sellerOnly).Post("/{transactionId}/prepare", ctrl.Transactions.Prepare)
				r.With(sellerOnly).Post("/{transactionId}/ship", ctrl.Transactions.Ship)
				r.With(buyerOnly).Post("/{transactionId}/deliver", ctrl.Transactions.Deliver)
				r.Post("/{transactionId}/cancel", ctrl.Transactions.Cancel)
			})

			r.With(buyerOnly).Post("/calculators/cart", ctrl.Calculators.Quote)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "method not allowed"))
	})

	return r
}
