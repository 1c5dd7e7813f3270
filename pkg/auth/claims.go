package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/lokapasar/backend/pkg/enums"
)

// AccessTokenClaims identifies the authenticated actor. Role decides which
// side of a transaction the caller may act on.
type AccessTokenClaims struct {
	ActorID int64           `json:"actor_id"`
	Role    enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}

func (c AccessTokenClaims) IsUser() bool {
	return c.Role == enums.ActorRoleUser
}

func (c AccessTokenClaims) IsSeller() bool {
	return c.Role == enums.ActorRoleSeller
}
