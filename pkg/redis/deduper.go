package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/masky/pkg/subscription"
)

// DefaultEventTTL covers Stripe's three-day redelivery window.
const DefaultEventTTL = 72 * time.Hour

// keyValueClient is the subset of go-redis commands the deduper needs.
// *redis.Client, *redis.ClusterClient and redis.UniversalClient satisfy it.
type keyValueClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// EventDeduper remembers processed webhook event IDs with SET NX so each
// event is applied at most once across all instances.
type EventDeduper struct {
	client keyValueClient
	prefix string
	ttl    time.Duration
}

var _ subscription.EventDeduper = (*EventDeduper)(nil)

// NewEventDeduper creates a deduper. Keys are "<prefix>:stripe:event:<id>"
// and expire after ttl (DefaultEventTTL when ttl <= 0).
func NewEventDeduper(client keyValueClient, prefix string, ttl time.Duration) *EventDeduper {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	if prefix == "" {
		prefix = "masky"
	}
	return &EventDeduper{client: client, prefix: prefix, ttl: ttl}
}

// MarkProcessed claims eventID. It reports seen=true when another delivery
// already claimed it.
func (d *EventDeduper) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, ErrEmptyEventID
	}
	created, err := d.client.SetNX(ctx, d.key(eventID), time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, errors.Join(ErrDedupeFailed, err)
	}
	return !created, nil
}

// Forget releases eventID so the next delivery is processed.
func (d *EventDeduper) Forget(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	if err := d.client.Del(ctx, d.key(eventID)).Err(); err != nil {
		return errors.Join(ErrDedupeFailed, err)
	}
	return nil
}

func (d *EventDeduper) key(eventID string) string {
	return d.prefix + ":stripe:event:" + eventID
}
