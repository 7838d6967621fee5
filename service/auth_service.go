package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
	"go.uber.org/zap"
)

// AuthService handles authentication business logic
type AuthService struct {
	tokenizer ports.Tokenizer
	store     ports.Store
	users     ports.CredentialStore
	hasher    ports.PasswordHasher
	eventPub  ports.EventPublisher
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	tokenizer ports.Tokenizer,
	store ports.Store,
	users ports.CredentialStore,
	hasher ports.PasswordHasher,
	eventPub ports.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tokenizer: tokenizer,
		store:     store,
		users:     users,
		hasher:    hasher,
		eventPub:  eventPub,
		logger:    logger,
	}
}

// Register creates a new identity. The first identity ever registered becomes an admin.
func (s *AuthService) Register(ctx context.Context, email, password string) (*core.Identity, error) {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, core.ErrUserExists
	case !errors.Is(err, core.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	identity, err := s.users.Create(ctx, email, hash)
	if err != nil {
		// A concurrent registration took the email between lookup and insert
		if errors.Is(err, core.ErrDuplicateEmail) {
			return nil, core.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.eventPub.PublishRegistered(ctx, identity); err != nil {
		s.logger.Warn("failed to publish registration event", zap.String("user_id", identity.ID), zap.Error(err))
	}

	return identity, nil
}

// Login checks credentials and mints a token pair
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.Session, error) {
	identity, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		return nil, core.ErrInvalidCredentials
	}

	pair, err := s.mint(identity)
	if err != nil {
		return nil, err
	}

	return &core.Session{Tokens: *pair, Identity: identity}, nil
}

// Refresh rotates the refresh token and issues new access and refresh tokens.
// The presented token is single use: once rotated, every later use fails with
// core.ErrTokenBlacklisted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	revoked, err := s.store.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, core.ErrTokenBlacklisted
	}

	claims, err := s.tokenizer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, core.ErrInvalidRefreshToken
	}

	// Unknown users are reported as a bad token so refresh cannot probe for accounts
	identity, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	pair, err := s.mint(identity)
	if err != nil {
		return nil, err
	}

	inserted, err := s.store.Revoke(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}
	if !inserted {
		// A concurrent rotation of the same token won; drop the pair minted here
		return nil, core.ErrTokenBlacklisted
	}

	return pair, nil
}

// Logout revokes a refresh token. Revoking an already revoked token is not an error.
// Access tokens minted from the session stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.store.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	// The event is best effort and only sent for tokens we can attribute
	claims, err := s.tokenizer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.eventPub.PublishLogout(ctx, claims.ID, claims.TokenID); err != nil {
		s.logger.Warn("failed to publish logout event", zap.String("user_id", claims.ID), zap.Error(err))
	}

	return nil
}

// Authenticate admits an access token that is neither revoked nor invalid
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*core.Claims, error) {
	if accessToken == "" {
		return nil, core.ErrUnauthenticated
	}

	revoked, err := s.store.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, core.ErrForbidden
	}

	claims, err := s.tokenizer.VerifyAccess(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrForbidden, err)
	}

	return claims, nil
}

func (s *AuthService) mint(identity *core.Identity) (*core.TokenPair, error) {
	claims := core.ClaimsFor(identity)

	accessToken, err := s.tokenizer.IssueAccess(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.tokenizer.IssueRefresh(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &core.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
