package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/redis/go-redis/v9"
)

// Loader reads the complete current collection.
type Loader[T any] func(ctx context.Context) (T, error)

// Feed delivers a full snapshot on start and again after every matching
// notification.
type Feed[T any] struct {
	client  redis.UniversalClient
	channel string
	topics  []string
	load    Loader[T]
	logger  *slog.Logger
}

// NewFeed builds a feed that reloads with load whenever one of topics is
// published. No topics means every notification triggers a reload.
func NewFeed[T any](client redis.UniversalClient, channel string, load Loader[T], logger *slog.Logger, topics ...string) *Feed[T] {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed[T]{client: client, channel: channel, topics: topics, load: load, logger: logger}
}

// Start subscribes and returns the snapshot channel. The channel holds at
// most one snapshot: a newer load replaces one the consumer has not taken
// yet. It is closed when ctx is done or the subscription ends.
func (f *Feed[T]) Start(ctx context.Context) (<-chan T, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("snapshot: subscribe %s: %w", f.channel, err)
	}

	out := make(chan T, 1)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		f.reload(ctx, out)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if !f.wants(msg.Payload) {
					continue
				}
				f.reload(ctx, out)
			}
		}
	}()
	return out, nil
}

func (f *Feed[T]) wants(topic string) bool {
	return len(f.topics) == 0 || slices.Contains(f.topics, topic)
}

func (f *Feed[T]) reload(ctx context.Context, out chan T) {
	snap, err := f.load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			f.logger.Warn("snapshot reload failed", slog.String("channel", f.channel), slog.Any("error", err))
		}
		return
	}
	offer(out, snap)
}

// offer places v in a one-slot channel, discarding a value still waiting
// there. Only the feed goroutine sends on out.
func offer[T any](out chan T, v T) {
	select {
	case out <- v:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	out <- v
}
