package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
)

const (
	// DefaultAccessTTL is the lifetime of access tokens
	DefaultAccessTTL = 15 * time.Minute

	// DefaultRefreshTTL is the lifetime of refresh tokens
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Config holds the signing material and lifetimes of both token classes
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now overrides the clock, used by tests
	Now func() time.Time
}

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	access  signer
	refresh signer
	now     func() time.Time
}

type signer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer. Both secrets are required and must differ.
func NewJWTTokenizer(cfg Config) (ports.Tokenizer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("access and refresh secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &JWTTokenizer{
		access:  signer{secret: cfg.AccessSecret, ttl: cfg.AccessTTL},
		refresh: signer{secret: cfg.RefreshSecret, ttl: cfg.RefreshTTL},
		now:     cfg.Now,
	}, nil
}

// IssueAccess signs claims into an access token
func (j *JWTTokenizer) IssueAccess(claims core.Claims) (string, error) {
	token, err := j.issue(j.access, claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// IssueRefresh signs claims into a refresh token
func (j *JWTTokenizer) IssueRefresh(claims core.Claims) (string, error) {
	token, err := j.issue(j.refresh, claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

// VerifyAccess parses an access token and returns its claims
func (j *JWTTokenizer) VerifyAccess(tokenStr string) (*core.Claims, error) {
	return j.verify(j.access, tokenStr)
}

// VerifyRefresh parses a refresh token and returns its claims
func (j *JWTTokenizer) VerifyRefresh(tokenStr string) (*core.Claims, error) {
	return j.verify(j.refresh, tokenStr)
}

func (j *JWTTokenizer) issue(s signer, claims core.Claims) (string, error) {
	now := j.now()
	payload := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: claims.ID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if err := payload.Validate(); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return token.SignedString(s.secret)
}

func (j *JWTTokenizer) verify(s signer, tokenStr string) (*core.Claims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	return claims.toCore(), nil
}
