package store

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultRetention is how long revocation entries are kept. Refresh tokens
// expire within this horizon, so older entries carry no information.
const DefaultRetention = 7 * 24 * time.Hour

// tokenKey maps a token string to its fixed-size storage key.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
