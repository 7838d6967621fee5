package core

import "time"

// Role is the authorization role carried by an identity and its tokens
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity represents a registered user
type Identity struct {
	ID           string    // Unique identifier (uuid)
	Email        string    // Unique, case-sensitive as stored
	PasswordHash string    // Salted one-way hash, never leaves the service layer
	Role         Role      // Assigned once at creation
	CreatedAt    time.Time // When the identity was registered
}

// Claims is the identity payload embedded in access and refresh tokens
type Claims struct {
	ID    string
	Email string
	Role  Role

	TokenID string // jti of the decoded token, ignored on issue
}

// ClaimsFor builds the token claims of an identity.
func ClaimsFor(identity *Identity) Claims {
	return Claims{
		ID:    identity.ID,
		Email: identity.Email,
		Role:  identity.Role,
	}
}

// TokenPair holds a freshly minted access and refresh token
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the result of a successful login
type Session struct {
	Tokens   TokenPair
	Identity *Identity
}
