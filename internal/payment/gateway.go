package payment

import (
	"context"
	"fmt"

	"github.com/lokapasar/backend/pkg/config"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// Intent is the gateway-side payment artifact shared by all sibling
// transactions of one checkout.
type Intent struct {
	PaymentLink string
	GatewayRef  string
}

// Gateway creates one payment intent for the aggregate of a checkout.
type Gateway interface {
	CreateIntent(ctx context.Context, grossAmount int64, parentID string) (*Intent, error)
}

type snapGateway struct {
	client snap.Client
}

// NewSnapGateway builds a Midtrans Snap gateway from config.
func NewSnapGateway(cfg config.MidtransConfig) (Gateway, error) {
	if cfg.ServerKey == "" {
		return nil, fmt.Errorf("midtrans server key required")
	}
	env := midtrans.Sandbox
	if cfg.IsProduction() {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(cfg.ServerKey, env)
	return &snapGateway{client: client}, nil
}

func (g *snapGateway) CreateIntent(ctx context.Context, grossAmount int64, parentID string) (*Intent, error) {
	if grossAmount <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "gross amount must be positive")
	}
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  parentID,
			GrossAmt: grossAmount,
		},
	}
	resp, err := g.client.CreateTransaction(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "creating payment intent")
	}
	return &Intent{PaymentLink: resp.RedirectURL, GatewayRef: parentID}, nil
}
