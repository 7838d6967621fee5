package ports

import (
	"context"

	"github.com/layer-3/trustgate/core"
)

// EventPublisher publishes events to notify other services
type EventPublisher interface {
	PublishLogout(ctx context.Context, userID string, tokenID string) error
	PublishRegistered(ctx context.Context, identity *core.Identity) error
	PublishKYCStatusChanged(ctx context.Context, sub *core.Submission) error
}
