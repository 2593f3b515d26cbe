package config

import (
	"os"

	"github.com/pusher/pusher-http-go/v5"
)

// NewPusherClient builds the Pusher Channels client from env. Returns nil
// when no credentials are configured so the caller can fall back to a noop
// notifier.
func NewPusherClient() *pusher.Client {
	appID := os.Getenv("PUSHER_APP_ID")
	key := os.Getenv("PUSHER_KEY")
	secret := os.Getenv("PUSHER_SECRET")

	if appID == "" || key == "" || secret == "" {
		return nil
	}

	return &pusher.Client{
		AppID:   appID,
		Key:     key,
		Secret:  secret,
		Cluster: os.Getenv("PUSHER_CLUSTER"),
		Secure:  true,
	}
}
