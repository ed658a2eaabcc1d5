package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheKey is the structured tuple a cached lookup is keyed by. Keeping the
// fields separate (instead of concatenated strings) makes collisions between
// e.g. item 12 / account 3 and item 1 / account 23 impossible.
type CacheKey struct {
	SessionID string
	ItemID    int64
	AccountID int64
	Class     Class
}

func (k CacheKey) redisKey() string {
	return fmt.Sprintf("txnview:%s:a%d:i%d:%s", k.SessionID, k.AccountID, k.ItemID, k.Class)
}

// accountScope groups every key of one account so an account switch can
// invalidate them together.
func (k CacheKey) accountScope() string {
	return fmt.Sprintf("txnview-keys:%s:a%d", k.SessionID, k.AccountID)
}

// Cache holds display-gate results for the duration of a bill-editing
// session. Entries are never shared across accounts or items.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached result for key, or found=false.
func (c *Cache) Get(ctx context.Context, key CacheKey) (Result, bool) {
	data, err := c.client.Get(ctx, key.redisKey()).Bytes()
	if err != nil {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, false
	}
	return res, true
}

// Put stores a result and registers its key under the account scope.
func (c *Cache) Put(ctx context.Context, key CacheKey, res Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key.redisKey(), data, c.ttl)
	pipe.SAdd(ctx, key.accountScope(), key.redisKey())
	pipe.Expire(ctx, key.accountScope(), c.ttl)
	_, _ = pipe.Exec(ctx)
}

// InvalidateAccount drops every cached entry the session holds for an
// account. Called when the account selection on the entry form changes.
func (c *Cache) InvalidateAccount(ctx context.Context, sessionID string, accountID int64) error {
	scope := CacheKey{SessionID: sessionID, AccountID: accountID}.accountScope()
	keys, err := c.client.SMembers(ctx, scope).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return c.client.Del(ctx, scope).Err()
}
