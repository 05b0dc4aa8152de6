// Package reconcile tracks orders whose escrow leg failed at creation time so
// the missing on-chain account can be attached later.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingKey = "escrow:pending"

// Tracker is a Redis-backed set of order IDs awaiting escrow attachment. The
// committed order row is the source of truth; the tracker only makes the
// inconsistency cheap to enumerate without scanning the orders table.
type Tracker struct {
	client *redis.Client
}

// NewTracker creates a Redis-backed pending-escrow tracker.
func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{client: client}
}

// Mark records an order as missing its escrow leg, with the failure kind for
// operator visibility.
func (t *Tracker) Mark(ctx context.Context, orderID, failureKind string) error {
	pipe := t.client.TxPipeline()
	pipe.SAdd(ctx, pendingKey, orderID)
	pipe.HSet(ctx, pendingKey+":detail", orderID, fmt.Sprintf("%s at %s", failureKind, time.Now().UTC().Format(time.RFC3339)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark order %s pending escrow: %w", orderID, err)
	}
	return nil
}

// Clear removes an order from the pending set after escrow is attached.
func (t *Tracker) Clear(ctx context.Context, orderID string) error {
	pipe := t.client.TxPipeline()
	pipe.SRem(ctx, pendingKey, orderID)
	pipe.HDel(ctx, pendingKey+":detail", orderID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear pending escrow for order %s: %w", orderID, err)
	}
	return nil
}

// Pending lists all order IDs awaiting escrow attachment.
func (t *Tracker) Pending(ctx context.Context) ([]string, error) {
	ids, err := t.client.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list pending escrow orders: %w", err)
	}
	return ids, nil
}

// IsPending reports whether the order is awaiting escrow attachment.
func (t *Tracker) IsPending(ctx context.Context, orderID string) (bool, error) {
	ok, err := t.client.SIsMember(ctx, pendingKey, orderID).Result()
	if err != nil {
		return false, fmt.Errorf("check pending escrow for order %s: %w", orderID, err)
	}
	return ok, nil
}
