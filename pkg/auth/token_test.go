package auth

import (
	"testing"

	"github.com/lokapasar/backend/pkg/config"
	"github.com/lokapasar/backend/pkg/enums"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "lokapasar-test",
		ExpirationMinutes: 5,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	raw, err := Mint(cfg, 42, enums.ActorRoleSeller)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ActorID)
	assert.Equal(t, enums.ActorRoleSeller, claims.Role)
	assert.True(t, claims.IsSeller())
	assert.False(t, claims.IsUser())
}

func TestMintRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	_, err := Mint(testJWTConfig(), 1, enums.ActorRole("admin"))
	require.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	raw, err := Mint(cfg, 7, enums.ActorRoleUser)
	require.NoError(t, err)

	cfg.Secret = "other-secret"
	_, err = ParseAccessToken(cfg, raw)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	raw, err := Mint(cfg, 7, enums.ActorRoleUser)
	require.NoError(t, err)

	cfg.Issuer = "someone-else"
	_, err = ParseAccessToken(cfg, raw)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}
