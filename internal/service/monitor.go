package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和性能指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	MQErrors       int64
	DBErrors       int64
	CheckoutErrors int64

	// 业务统计
	CheckoutRequests int64
	OrdersCreated    int64
	OrdersCancelled  int64
	PaymentsVerified int64
	PaymentsFailed   int64

	// 时间统计
	LastMQError     time.Time
	LastDBError     time.Time
	LastOrderTime   time.Time
	LastPaymentTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordCheckoutRequest 记录下单请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
}

// RecordCheckoutError 记录下单失败
func (m *Monitor) RecordCheckoutError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutErrors++
}

// RecordOrderCreated 记录下单成功
func (m *Monitor) RecordOrderCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersCreated++
	m.LastOrderTime = time.Now()
}

// RecordOrderCancelled 记录订单取消
func (m *Monitor) RecordOrderCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersCancelled++
}

// RecordPaymentVerified 记录支付验证成功
func (m *Monitor) RecordPaymentVerified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentsVerified++
	m.LastPaymentTime = time.Now()
}

// RecordPaymentFailed 记录支付验证失败
func (m *Monitor) RecordPaymentFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentsFailed++
	m.LastPaymentTime = time.Now()
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.CheckoutRequests > 0 {
		successRate = float64(m.OrdersCreated) / float64(m.CheckoutRequests) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"mq":       m.MQErrors,
			"db":       m.DBErrors,
			"checkout": m.CheckoutErrors,
		},
		"orders": map[string]interface{}{
			"checkout_requests":     m.CheckoutRequests,
			"orders_created":        m.OrdersCreated,
			"orders_cancelled":      m.OrdersCancelled,
			"checkout_success_rate": successRate,
		},
		"payments": map[string]interface{}{
			"verified": m.PaymentsVerified,
			"failed":   m.PaymentsFailed,
		},
		"last_events": map[string]interface{}{
			"mq_error":     m.LastMQError,
			"db_error":     m.LastDBError,
			"last_order":   m.LastOrderTime,
			"last_payment": m.LastPaymentTime,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors = 0
	m.DBErrors = 0
	m.CheckoutErrors = 0
	m.CheckoutRequests = 0
	m.OrdersCreated = 0
	m.OrdersCancelled = 0
	m.PaymentsVerified = 0
	m.PaymentsFailed = 0
}
