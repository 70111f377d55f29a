package service

import (
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

const (
	redisOrderSeqKey = "order:seq:%s" // yyyymmdd
	// 序列 key 保留两天，跨天后自然换新 key
	orderSeqExpireSeconds = 172800
)

// OrderNumberGenerator 基于 Redis 自增序列生成日期前缀订单号
type OrderNumberGenerator struct {
	redis radix.Client
}

// NewOrderNumberGenerator 创建订单号生成器
func NewOrderNumberGenerator(redis radix.Client) *OrderNumberGenerator {
	return &OrderNumberGenerator{redis: redis}
}

// Next 生成下一个订单号，形如 ORD-20250131-000042。
// Redis INCR 保证同一天内序列单调，订单表上的唯一索引是最后防线。
func (g *OrderNumberGenerator) Next() (string, error) {
	day := time.Now().Format("20060102")
	key := fmt.Sprintf(redisOrderSeqKey, day)
	var seq int64
	if err := g.redis.Do(radix.Cmd(&seq, "INCR", key)); err != nil {
		return "", err
	}
	if seq == 1 {
		_ = g.redis.Do(radix.FlatCmd(nil, "EXPIRE", key, orderSeqExpireSeconds))
	}
	return FormatOrderNo(day, seq), nil
}

// FormatOrderNo 拼装订单号
func FormatOrderNo(day string, seq int64) string {
	return fmt.Sprintf("ORD-%s-%06d", day, seq)
}
