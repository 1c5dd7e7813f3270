package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lokapasar/backend/pkg/config"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRateClientQuote(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cost", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("key"))

		var req QuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(22), req.OriginDistrictID)
		assert.Equal(t, int64(11), req.DestDistrictID)
		assert.Equal(t, "jne", req.Courier)

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"code": "jne", "costs": []map[string]any{
					{"service": "REG", "cost": 20},
					{"service": "YES", "cost": 45},
				}},
			},
		})
	}))
	defer server.Close()

	client, err := NewHTTPRateClient(config.RateServiceConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)

	tiers, err := client.Quote(context.Background(), QuoteRequest{
		OriginDistrictID: 22,
		DestDistrictID:   11,
		WeightGram:       100,
		Courier:          "jne",
	})
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, ServiceCost{Service: "REG", Cost: 20}, tiers[0])
}

func TestHTTPRateClientUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewHTTPRateClient(config.RateServiceConfig{BaseURL: server.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	_, err = client.Quote(context.Background(), QuoteRequest{Courier: "jne"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDependency))
}

func TestHTTPRateClientUnknownCourier(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}})
	}))
	defer server.Close()

	client, err := NewHTTPRateClient(config.RateServiceConfig{BaseURL: server.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	tiers, err := client.Quote(context.Background(), QuoteRequest{Courier: "ghost"})
	require.NoError(t, err)
	assert.Empty(t, tiers)
}

func TestNewHTTPRateClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPRateClient(config.RateServiceConfig{})
	require.Error(t, err)
}
