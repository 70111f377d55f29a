package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/order"
)

const orderEventQueue = "order_events"

// 订单事件类型
const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderCancelled = "order.cancelled"
	EventOrderStatus    = "order.status_changed"
)

// OrderEvent 订单生命周期事件，投递给通知 worker
type OrderEvent struct {
	EventID    string       `json:"event_id"`
	Type       string       `json:"type"`
	OrderNo    string       `json:"order_no"`
	UserID     int64        `json:"user_id"`
	Status     order.Status `json:"status"`
	Total      int64        `json:"total"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// publishOrderEvent 事务提交后异步通知，失败只记录不影响主流程
func publishOrderEvent(ctx context.Context, conn *amqp.Connection, eventType string, o *order.Order) {
	if conn == nil {
		return
	}
	ch, err := conn.Channel()
	if err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("open mq channel failed", zap.Error(err))
		return
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderEventQueue, true, false, false, false, nil); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("declare order event queue failed", zap.Error(err))
		return
	}

	body, err := json.Marshal(&OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total,
		OccurredAt: time.Now(),
	})
	if err != nil {
		zap.L().Warn("marshal order event failed", zap.Error(err))
		return
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		orderEventQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("publish order event failed",
			zap.String("type", eventType), zap.String("order_no", o.OrderNo), zap.Error(err))
	}
}
