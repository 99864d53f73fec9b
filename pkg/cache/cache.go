package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pierrec/lz4/v4"
)

const (
	// defaultOperationTimeout is the timeout for individual Redis operations
	defaultOperationTimeout = 5 * time.Second
)

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheDisabled = errors.New("cache disabled")
)

type Cache struct {
	client  *redis.Client
	enabled bool
}

// NewCache connects to Redis at url (redis://host:port/db). A disabled cache
// accepts every call and stores nothing.
func NewCache(url string, enable bool) (*Cache, error) {
	if !enable {
		return &Cache{enabled: false}, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 5
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client:  client,
		enabled: true,
	}, nil
}

func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// operationContext bounds a Redis operation by the caller's context and the default timeout.
func (c *Cache) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, defaultOperationTimeout)
}

// Set stores value as lz4-compressed JSON.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := Encode(value)
	if err != nil {
		return err
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Set(ctx, key, payload, expiration).Err()
}

// Get loads key into dest. It returns ErrCacheMiss when the key is absent.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrCacheDisabled
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	} else if err != nil {
		return err
	}
	return Decode(val, dest)
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// RenderKey identifies a cached public render of one page of a store.
func RenderKey(storeID, selector string) string {
	return fmt.Sprintf("render:%s:%s", storeID, selector)
}

func renderPattern(storeID string) string {
	return fmt.Sprintf("render:%s:*", storeID)
}

func (c *Cache) CacheRender(ctx context.Context, storeID, selector string, tree interface{}, ttl time.Duration) error {
	return c.Set(ctx, RenderKey(storeID, selector), tree, ttl)
}

func (c *Cache) GetCachedRender(ctx context.Context, storeID, selector string, dest interface{}) error {
	return c.Get(ctx, RenderKey(storeID, selector), dest)
}

// InvalidateStoreRenders drops every cached render of a store.
func (c *Cache) InvalidateStoreRenders(ctx context.Context, storeID string) error {
	return c.DeletePattern(ctx, renderPattern(storeID))
}

// InvalidateAllRenders drops cached renders of every store.
func (c *Cache) InvalidateAllRenders(ctx context.Context) error {
	return c.DeletePattern(ctx, "render:*")
}

// Encode marshals value to JSON and compresses it with an lz4 frame.
func Encode(value interface{}) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode cache value: %w", err)
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress cache value: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress cache value: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode.
func Decode(payload []byte, dest interface{}) error {
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
	if err != nil {
		return fmt.Errorf("decompress cache value: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode cache value: %w", err)
	}
	return nil
}
