package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/trustgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestWatermillPublisher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	logouts, err := pubSub.Subscribe(ctx, TopicLogout)
	require.NoError(t, err)
	registrations, err := pubSub.Subscribe(ctx, TopicUserRegistered)
	require.NoError(t, err)
	statuses, err := pubSub.Subscribe(ctx, TopicKYCStatusChanged)
	require.NoError(t, err)

	p := NewWatermillPublisher(pubSub)

	require.NoError(t, p.PublishLogout(ctx, "u1", "jti-1"))
	var logout LogoutEvent
	require.NoError(t, json.Unmarshal(receive(t, logouts).Payload, &logout))
	assert.Equal(t, LogoutEvent{UserID: "u1", TokenID: "jti-1"}, logout)

	require.NoError(t, p.PublishRegistered(ctx, &core.Identity{ID: "u2", Email: "bob@x.com", Role: core.RoleUser}))
	var registered RegisteredEvent
	require.NoError(t, json.Unmarshal(receive(t, registrations).Payload, &registered))
	assert.Equal(t, "bob@x.com", registered.Email)
	assert.Equal(t, core.RoleUser, registered.Role)

	require.NoError(t, p.PublishKYCStatusChanged(ctx, &core.Submission{UserID: "u2", Status: core.KYCApproved}))
	var status KYCStatusEvent
	require.NoError(t, json.Unmarshal(receive(t, statuses).Payload, &status))
	assert.Equal(t, core.KYCApproved, status.Status)
}

func TestWatermillPublisherClosed(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	require.NoError(t, pubSub.Close())

	p := NewWatermillPublisher(pubSub)
	assert.Error(t, p.PublishLogout(context.Background(), "u1", "jti-1"))
}
