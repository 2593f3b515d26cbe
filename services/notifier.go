package services

import (
	"github.com/pusher/pusher-http-go/v5"
)

// NotificationChannel is the single channel all comment events go out on.
const NotificationChannel = "comments"

const (
	EventCommentCreated  = "comment:created"
	EventCommentUpdated  = "comment:updated"
	EventCommentDeleted  = "comment:deleted"
	EventCommentLiked    = "comment:liked"
	EventCommentDisliked = "comment:disliked"
	EventCommentReply    = "comment:reply"
)

// Notifier - interface for the push transport. Delivery is best effort;
// the service logs and swallows every error it returns.
type Notifier interface {
	Publish(channel, event string, payload interface{}) error
}

// PusherNotifier publishes through Pusher Channels.
type PusherNotifier struct {
	client *pusher.Client
}

func NewPusherNotifier(client *pusher.Client) *PusherNotifier {
	return &PusherNotifier{client: client}
}

func (n *PusherNotifier) Publish(channel, event string, payload interface{}) error {
	return n.client.Trigger(channel, event, payload)
}

// NoopNotifier is used when no Pusher credentials are configured.
type NoopNotifier struct{}

func (NoopNotifier) Publish(channel, event string, payload interface{}) error {
	return nil
}
