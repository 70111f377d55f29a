package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// TokenCache 把 JWT 解析结果缓存在 Redis，key 按分片环组织。
// 登出时主动失效，过期靠 TTL 兜底。
type TokenCache struct {
	redis radix.Client
	ring  *ShardRing
	ttl   time.Duration
}

// NewTokenCache 构建缓存器
func NewTokenCache(redis radix.Client, ring *ShardRing, ttl time.Duration) *TokenCache {
	if ring == nil {
		ring = NewShardRing(nil, 0)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{redis: redis, ring: ring, ttl: ttl}
}

// key 形如 shopmall:token:<分片>:<sha256 前 16 字节>
func (c *TokenCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "shopmall:token:" + c.ring.Pick(token) + ":" + hex.EncodeToString(sum[:16])
}

// Lookup 查询缓存的 claims，未命中返回 (nil, nil)
func (c *TokenCache) Lookup(ctx context.Context, token string) (*Claims, error) {
	if c.redis == nil {
		return nil, nil
	}
	var raw string
	if err := c.redis.Do(radix.Cmd(&raw, "GET", c.key(token))); err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		// 缓存数据损坏，清理后让调用方重新走签名校验
		_ = c.redis.Do(radix.Cmd(nil, "DEL", c.key(token)))
		return nil, nil
	}
	return &claims, nil
}

// Store 写入解析结果
func (c *TokenCache) Store(ctx context.Context, token string, claims *Claims) error {
	if c.redis == nil || claims == nil {
		return nil
	}
	body, _ := json.Marshal(claims)
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", c.key(token), int64(c.ttl/time.Second), body))
}

// Invalidate 登出时主动失效，后续请求必须重新通过签名校验
func (c *TokenCache) Invalidate(ctx context.Context, token string) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Do(radix.Cmd(nil, "DEL", c.key(token)))
}
