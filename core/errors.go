package core

import "errors"

// Messages double as the user-facing error strings returned by the HTTP layer.
var (
	ErrUserExists          = errors.New("User already exists")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrTokenBlacklisted    = errors.New("Token is blacklisted")
	ErrUserNotFound        = errors.New("User not found")
	ErrInvalidRefreshToken = errors.New("Invalid refresh token")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrDuplicateEmail      = errors.New("duplicate email")
	ErrPasswordTooLong     = errors.New("Password must be at most 72 bytes")

	ErrTokenExpired = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")

	ErrKYCNotFound          = errors.New("KYC not found")
	ErrKYCPending           = errors.New("KYC already pending approval")
	ErrKYCAlreadyApproved   = errors.New("KYC already approved")
	ErrKYCMediaRequired     = errors.New("Both image and video are required")
	ErrInvalidKYCTransition = errors.New("KYC is not pending review")
)
