// Package catalogcache 目录数据的 Redis 读穿缓存。
// 缓存不可用时直接回源数据库，不向调用方返回缓存错误。
package catalogcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/bookstore/pkg/logger"
)

const prefix = "catalog:"

// 缓存键
const (
	KeyCategoryTree = prefix + "category:tree"
	KeyCategories   = prefix + "category:active"
	KeyCarousels    = prefix + "carousels"
)

func KeyHotBooks(n int) string { return fmt.Sprintf("%shot:%d", prefix, n) }
func KeyNewBooks(n int) string { return fmt.Sprintf("%snew:%d", prefix, n) }

// Cache rdb 为 nil 时所有读取都直接回源
type Cache struct {
	rdb *redis.Client
	ttl time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Enabled 是否连接了 Redis
func (c *Cache) Enabled() bool { return c != nil && c.rdb != nil }

// Fetch 先读缓存，未命中或解码失败时调用 load 回源并回写
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out T
		if uErr := json.Unmarshal(data, &out); uErr == nil {
			c.hits.Add(1)
			return out, nil
		}
	case err != redis.Nil:
		logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}
	c.misses.Add(1)

	c.loads.Add(1)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if payload, mErr := json.Marshal(v); mErr == nil {
		if sErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); sErr != nil {
			logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(sErr))
		}
	}
	return v, nil
}

// Invalidate 删除指定键
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	pipe := c.rdb.Pipeline()
	for _, k := range keys {
		pipe.Del(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("catalog cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidateAll 按前缀清空目录缓存（运维命令使用）
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	c.Invalidate(ctx, keys...)
	return nil
}

// ResetCounters 清零统计
func (c *Cache) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.loads.Store(0)
}

// Counters 命中/未命中/回源次数
func (c *Cache) Counters() Counters {
	return Counters{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Loads:  c.loads.Load(),
	}
}

// Counters 一段时间内的缓存统计
type Counters struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Loads  int64 `json:"loads"`
}
