package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vault-analytics/internal/logging"
	"github.com/vault-analytics/internal/venue"
)

// DocumentCache keeps successfully fetched raw venue bodies in Redis so a
// rerun within the TTL can skip the network. Cache faults are never fatal:
// a miss or a Redis error simply degrades to a fetch.
type DocumentCache struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewDocumentCache creates a document cache with the given TTL.
func NewDocumentCache(cache *RedisCache, ttl time.Duration) *DocumentCache {
	return &DocumentCache{cache: cache, ttl: ttl}
}

func documentKey(kind venue.RequestKind, address string) string {
	return fmt.Sprintf("venue:%s:%s", kind, address)
}

// Get returns the cached outcome for an address, if present.
func (c *DocumentCache) Get(ctx context.Context, kind venue.RequestKind, address string) (venue.Outcome, bool) {
	raw, err := c.cache.Client().Get(ctx, documentKey(kind, address)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.FromContext(ctx).WithError(err).Warnf("document cache read failed for %s", address)
		}
		return venue.Outcome{}, false
	}

	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		logging.FromContext(ctx).WithError(err).Warnf("document cache entry for %s is corrupt", address)
		return venue.Outcome{}, false
	}

	switch v := body.(type) {
	case map[string]interface{}:
		return venue.Outcome{Address: address, Doc: venue.Document(v)}, true
	case []interface{}:
		return venue.Outcome{Address: address, Items: v}, true
	default:
		return venue.Outcome{}, false
	}
}

// Put stores a successful outcome's body. Failed outcomes are never cached.
func (c *DocumentCache) Put(ctx context.Context, kind venue.RequestKind, outcome venue.Outcome) {
	if !outcome.OK() {
		return
	}

	var body interface{}
	switch {
	case outcome.Doc != nil:
		body = map[string]interface{}(outcome.Doc)
	case outcome.Items != nil:
		body = outcome.Items
	default:
		return
	}

	raw, err := json.Marshal(body)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warnf("document cache encode failed for %s", outcome.Address)
		return
	}

	if err := c.cache.Client().Set(ctx, documentKey(kind, outcome.Address), raw, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).WithError(err).Warnf("document cache write failed for %s", outcome.Address)
	}
}
