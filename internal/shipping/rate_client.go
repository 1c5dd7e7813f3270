package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lokapasar/backend/pkg/config"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/metrics"
)

// QuoteRequest asks the rate service for the available tiers of one courier
// between two districts.
type QuoteRequest struct {
	OriginDistrictID int64  `json:"origin"`
	DestDistrictID   int64  `json:"destination"`
	WeightGram       int    `json:"weight"`
	Courier          string `json:"courier"`
}

// ServiceCost is one service tier quoted by the rate service.
type ServiceCost struct {
	Service string `json:"service"`
	Cost    int64  `json:"cost"`
}

// RateClient quotes shipment costs for a courier between two districts.
type RateClient interface {
	Quote(ctx context.Context, req QuoteRequest) ([]ServiceCost, error)
}

type httpRateClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPRateClient builds a rate client against the configured service.
func NewHTTPRateClient(cfg config.RateServiceConfig) (RateClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rate service base url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpRateClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type costResponse struct {
	Results []struct {
		Courier string        `json:"code"`
		Costs   []ServiceCost `json:"costs"`
	} `json:"results"`
}

func (c *httpRateClient) Quote(ctx context.Context, req QuoteRequest) ([]ServiceCost, error) {
	started := time.Now()
	tiers, err := c.quote(ctx, req)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveRateLookup(outcome, time.Since(started))
	return tiers, err
}

func (c *httpRateClient) quote(ctx context.Context, req QuoteRequest) ([]ServiceCost, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "encoding rate request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cost", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "building rate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "rate service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.CodeDependency,
			fmt.Sprintf("rate service returned status %d", resp.StatusCode))
	}

	var payload costResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "decoding rate response")
	}

	for _, result := range payload.Results {
		if result.Courier == req.Courier {
			return result.Costs, nil
		}
	}
	return nil, nil
}
