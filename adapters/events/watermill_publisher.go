package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
)

const (
	TopicLogout           = "trustgate.auth.logout"
	TopicUserRegistered   = "trustgate.user.registered"
	TopicKYCStatusChanged = "trustgate.kyc.status_changed"
)

// LogoutEvent represents a logout event
type LogoutEvent struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
}

// RegisteredEvent is published when an identity is created
type RegisteredEvent struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      core.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// KYCStatusEvent is published when a submission enters a new status
type KYCStatusEvent struct {
	UserID    string         `json:"user_id"`
	Status    core.KYCStatus `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID string, tokenID string) error {
	return p.publish(ctx, TopicLogout, LogoutEvent{UserID: userID, TokenID: tokenID})
}

// PublishRegistered publishes a registration event
func (p *WatermillPublisher) PublishRegistered(ctx context.Context, identity *core.Identity) error {
	return p.publish(ctx, TopicUserRegistered, RegisteredEvent{
		UserID:    identity.ID,
		Email:     identity.Email,
		Role:      identity.Role,
		CreatedAt: identity.CreatedAt,
	})
}

// PublishKYCStatusChanged publishes a KYC status change
func (p *WatermillPublisher) PublishKYCStatusChanged(ctx context.Context, sub *core.Submission) error {
	return p.publish(ctx, TopicKYCStatusChanged, KYCStatusEvent{
		UserID:    sub.UserID,
		Status:    sub.Status,
		UpdatedAt: sub.UpdatedAt,
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishLogout(context.Context, string, string) error { return nil }
func (NopPublisher) PublishRegistered(context.Context, *core.Identity) error { return nil }
func (NopPublisher) PublishKYCStatusChanged(context.Context, *core.Submission) error { return nil }
