// Package cache keeps per-recipient unread notification counts close to the API.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when no count is cached for the recipient.
var ErrMiss = errors.New("cache miss")

// UnreadCounter caches unread counts keyed by recipient id.
//
// Every Invalidate bumps the recipient's version. A reader that missed takes the
// version before counting and fills with SetIfVersion, which refuses the write when
// an invalidation happened in between.
type UnreadCounter interface {
	Get(ctx context.Context, recipientID uint) (int64, error)
	Version(ctx context.Context, recipientID uint) (int64, error)
	SetIfVersion(ctx context.Context, recipientID uint, count, version int64) (bool, error)
	Invalidate(ctx context.Context, recipientID uint) error
}

func unreadKey(recipientID uint) string {
	return fmt.Sprintf("notifications:unread:%d", recipientID)
}

func versionKey(recipientID uint) string {
	return fmt.Sprintf("notifications:unread:%d:version", recipientID)
}

var errStaleVersion = errors.New("unread count version moved")

// RedisUnreadCounter shares counts between API replicas.
type RedisUnreadCounter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUnreadCounter(client *redis.Client, ttl time.Duration) *RedisUnreadCounter {
	return &RedisUnreadCounter{client: client, ttl: ttl}
}

func (c *RedisUnreadCounter) Get(ctx context.Context, recipientID uint) (int64, error) {
	raw, err := c.client.Get(ctx, unreadKey(recipientID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrMiss
	}
	return n, nil
}

func (c *RedisUnreadCounter) Version(ctx context.Context, recipientID uint) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(recipientID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetIfVersion writes under WATCH on the version key, so an Invalidate from any
// replica between Version and here aborts the write.
func (c *RedisUnreadCounter) SetIfVersion(ctx context.Context, recipientID uint, count, version int64) (bool, error) {
	vkey := versionKey(recipientID)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, unreadKey(recipientID), count, c.ttl)
			return nil
		})
		return err
	}, vkey)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, err
	}
}

func (c *RedisUnreadCounter) Invalidate(ctx context.Context, recipientID uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, unreadKey(recipientID))
		pipe.Incr(ctx, versionKey(recipientID))
		return nil
	})
	return err
}

// MemoryUnreadCounter is the single-process fallback used when no Redis is configured.
type MemoryUnreadCounter struct {
	store *gocache.Cache

	mu       sync.Mutex
	versions map[uint]int64
}

func NewMemoryUnreadCounter(ttl time.Duration) *MemoryUnreadCounter {
	return &MemoryUnreadCounter{
		store:    gocache.New(ttl, 2*ttl),
		versions: map[uint]int64{},
	}
}

func (c *MemoryUnreadCounter) Get(_ context.Context, recipientID uint) (int64, error) {
	v, ok := c.store.Get(unreadKey(recipientID))
	if !ok {
		return 0, ErrMiss
	}
	return v.(int64), nil
}

func (c *MemoryUnreadCounter) Version(_ context.Context, recipientID uint) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[recipientID], nil
}

func (c *MemoryUnreadCounter) SetIfVersion(_ context.Context, recipientID uint, count, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[recipientID] != version {
		return false, nil
	}
	c.store.SetDefault(unreadKey(recipientID), count)
	return true, nil
}

func (c *MemoryUnreadCounter) Invalidate(_ context.Context, recipientID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(unreadKey(recipientID))
	c.versions[recipientID]++
	return nil
}
