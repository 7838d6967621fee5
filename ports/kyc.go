package ports

import (
	"context"
	"io"

	"github.com/layer-3/trustgate/core"
)

// KYCStore persists one submission per identity
type KYCStore interface {
	Find(ctx context.Context, userID string) (*core.Submission, error)

	// Submit creates a pending submission, or resets a rejected one to pending
	// with new media. Fails with core.ErrKYCPending or core.ErrKYCAlreadyApproved
	// when the existing submission may not be replaced.
	Submit(ctx context.Context, userID, imageURL, videoURL string) (sub *core.Submission, created bool, err error)

	// SetStatus moves a pending submission to status.
	SetStatus(ctx context.Context, userID string, status core.KYCStatus) (*core.Submission, error)
}

// MediaStore saves uploaded binaries and returns a retrievable URL
type MediaStore interface {
	Save(ctx context.Context, folder, name string, r io.Reader) (string, error)
	// Remove deletes media previously returned by Save. Unknown URLs are ignored.
	Remove(ctx context.Context, url string) error
}
