package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/repository"
	"docstudio/internal/infra/metrics"
	red "docstudio/internal/infra/redis"
)

var _ repository.SubscriptionRepository = (*subscriptionRepoCacheDecorator)(nil)

// subscriptionRepoCacheDecorator caches the hot entitlement lookup,
// FindActiveByUser, which every quota check hits. Reads inside a
// transaction bypass the cache: the reconciler must see its own writes.
type subscriptionRepoCacheDecorator struct {
	inner repository.SubscriptionRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewSubscriptionRepoCacheDecorator(inner repository.SubscriptionRepository, cache red.RedisClient, ttl time.Duration) repository.SubscriptionRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &subscriptionRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func activeSubKey(userID string) string {
	return fmt.Sprintf("subscription:active:%s", userID)
}

func (d *subscriptionRepoCacheDecorator) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	_ = d.cache.Del(ctx, activeSubKey(s.UserID))
	return d.inner.Upsert(ctx, tx, s)
}

func (d *subscriptionRepoCacheDecorator) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	if tx != nil {
		metrics.IncCacheRequest("subscription", "bypass")
		return d.inner.FindActiveByUser(ctx, tx, userID)
	}

	key := activeSubKey(userID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("subscription", "hit")
		var sub model.Subscription
		if json.Unmarshal([]byte(val), &sub) == nil {
			return &sub, nil
		}
	}

	metrics.IncCacheRequest("subscription", "miss")
	sub, err := d.inner.FindActiveByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		bytes, _ := json.Marshal(sub)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return sub, nil
}

func (d *subscriptionRepoCacheDecorator) FindByExternalSubscriptionID(ctx context.Context, tx repository.Tx, externalID string) (*model.Subscription, error) {
	return d.inner.FindByExternalSubscriptionID(ctx, tx, externalID)
}

func (d *subscriptionRepoCacheDecorator) UpdateStatus(ctx context.Context, tx repository.Tx, userID, id string, status model.SubscriptionStatus) error {
	// A lifecycle transition changes entitlements; the cached active
	// row must not outlive it.
	_ = d.cache.Del(ctx, activeSubKey(userID))
	return d.inner.UpdateStatus(ctx, tx, userID, id, status)
}

func (d *subscriptionRepoCacheDecorator) SetExternalSubscriptionID(ctx context.Context, tx repository.Tx, userID, id, externalID string) error {
	_ = d.cache.Del(ctx, activeSubKey(userID))
	return d.inner.SetExternalSubscriptionID(ctx, tx, userID, id, externalID)
}
