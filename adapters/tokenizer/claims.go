package tokenizer

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/trustgate/core"
)

// IdentityClaims is the JWT payload shared by access and refresh tokens
type IdentityClaims struct {
	jwt.RegisteredClaims
	UserID string    `json:"id"`
	Email  string    `json:"email"`
	Role   core.Role `json:"role"`
}

// Validate is called by the jwt parser after the registered claims pass.
func (c IdentityClaims) Validate() error {
	if c.UserID == "" || c.Email == "" || !c.Role.Valid() {
		return core.ErrInvalidToken
	}
	return nil
}

func (c IdentityClaims) toCore() *core.Claims {
	return &core.Claims{
		ID:      c.UserID,
		Email:   c.Email,
		Role:    c.Role,
		TokenID: c.ID,
	}
}
