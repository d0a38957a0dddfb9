// Package snapshot turns change notifications into a stream of complete
// snapshots. Writers publish a topic name on a Redis channel after every
// write; readers reload the full collection on each notification and only
// ever see the most recent load.
package snapshot

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "fleet.changed"

// Notifier publishes change topics.
type Notifier struct {
	client  redis.UniversalClient
	channel string
}

// NewNotifier returns a Notifier publishing on channel.
func NewNotifier(client redis.UniversalClient, channel string) *Notifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Notifier{client: client, channel: channel}
}

// Publish announces that the collection named by topic changed.
func (n *Notifier) Publish(ctx context.Context, topic string) error {
	if n == nil || n.client == nil {
		return nil
	}
	if err := n.client.Publish(ctx, n.channel, topic).Err(); err != nil {
		return fmt.Errorf("snapshot: publish %s: %w", topic, err)
	}
	return nil
}
