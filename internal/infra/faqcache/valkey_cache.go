package faqcache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/polyglot-faq/internal/domain/faq"
)

// ValkeyCache implements faq.Cache on a Valkey-compatible server.
type ValkeyCache struct {
	client valkey.Client
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client) *ValkeyCache {
	return &ValkeyCache{client: client}
}

// Get implements faq.Cache.
func (c *ValkeyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Set implements faq.Cache.
func (c *ValkeyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	builder := c.client.B().Set().Key(key).Value(valkey.BinaryString(value))
	var cmd valkey.Completed
	if ttl = normalizeTTL(ttl); ttl > 0 {
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

// DeleteByPrefix implements faq.Cache with SCAN MATCH and batched UNLINK.
func (c *ValkeyCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	pattern := matchPrefix(prefix)
	var (
		cursor  uint64
		removed int64
	)
	for {
		entry, err := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()).AsScanEntry()
		if err != nil {
			return removed, err
		}
		if len(entry.Elements) > 0 {
			n, err := c.client.Do(ctx, c.client.B().Unlink().Key(entry.Elements...).Build()).AsInt64()
			if err != nil {
				return removed, err
			}
			removed += n
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return removed, nil
		}
	}
}

// Ping implements faq.Cache.
func (c *ValkeyCache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

var _ faq.Cache = (*ValkeyCache)(nil)
