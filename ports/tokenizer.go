package ports

import "github.com/layer-3/trustgate/core"

// Tokenizer converts between identity claims and signed bearer tokens
type Tokenizer interface {
	// Access tokens authorize API calls directly
	IssueAccess(claims core.Claims) (string, error)
	VerifyAccess(token string) (*core.Claims, error)

	// Refresh tokens only authorize minting a new token pair
	IssueRefresh(claims core.Claims) (string, error)
	VerifyRefresh(token string) (*core.Claims, error)
}
