package middleware

import (
	"sync"
	"time"

	"github.com/kataras/iris/v12"
)

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	capacity   int64      // 桶容量
	tokens     int64      // 当前令牌数
	refillRate int64      // 每秒补充的令牌数
	lastRefill time.Time  // 上次补充时间
	mu         sync.Mutex // 互斥锁
}

// NewTokenBucket 创建令牌桶
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// 补充令牌
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int64(elapsed.Seconds()) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens = tb.tokens + tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	// 检查是否有可用令牌
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// CheckoutLimiter 按用户分桶的下单限流，单个用户刷接口不影响其他用户
type CheckoutLimiter struct {
	mu         sync.Mutex
	buckets    map[int64]*userBucket
	capacity   int64
	refillRate int64
}

type userBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// 超过这个数量时清理长期不活跃的用户桶
const maxTrackedUsers = 10000

// NewCheckoutLimiter 创建按用户分桶的限流器
func NewCheckoutLimiter(capacity, refillRate int64) *CheckoutLimiter {
	return &CheckoutLimiter{
		buckets:    make(map[int64]*userBucket),
		capacity:   capacity,
		refillRate: refillRate,
	}
}

// Allow 对指定用户取一个令牌
func (l *CheckoutLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	ub, ok := l.buckets[userID]
	if !ok {
		if len(l.buckets) >= maxTrackedUsers {
			l.evictStale()
		}
		ub = &userBucket{bucket: NewTokenBucket(l.capacity, l.refillRate)}
		l.buckets[userID] = ub
	}
	ub.lastSeen = time.Now()
	l.mu.Unlock()
	return ub.bucket.Allow()
}

// evictStale 清掉一分钟没有动静的用户桶，调用方需持有锁
func (l *CheckoutLimiter) evictStale() {
	cutoff := time.Now().Add(-time.Minute)
	for id, ub := range l.buckets {
		if ub.lastSeen.Before(cutoff) {
			delete(l.buckets, id)
		}
	}
}

// 全局下单限流器：每个用户容量 5，每秒补充 1 个令牌
var checkoutLimiter = NewCheckoutLimiter(5, 1)

// CheckoutRateLimit 下单接口限流，按登录用户分桶
func CheckoutRateLimit() iris.Handler {
	return func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		if !checkoutLimiter.Allow(userID) {
			ctx.StopWithJSON(429, iris.Map{
				"code": 429,
				"msg":  "下单过于频繁，请稍后再试",
			})
			return
		}
		ctx.Next()
	}
}
