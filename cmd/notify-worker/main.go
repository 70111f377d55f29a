package main

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/infra/mq"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/logging"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/service"
)

const orderEventQueue = "order_events"

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		panic(err)
	}

	logging.Init(false)
	zap.L().Info("log init success")

	mqConn := mq.Init(&cfg.RabbitMQ)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderEventQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(orderEventQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("notify worker started, waiting for order events...")

	for d := range msgs {
		var ev service.OrderEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			zap.L().Warn("invalid event message", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleEvent(&ev, d)
	}
}

// handleEvent 按事件类型下发通知。目前以日志代替邮件/短信通道。
func handleEvent(ev *service.OrderEvent, d amqp.Delivery) {
	switch ev.Type {
	case service.EventOrderCreated:
		zap.L().Info("notify: order created",
			zap.String("order_no", ev.OrderNo),
			zap.Int64("user_id", ev.UserID),
			zap.Int64("total", ev.Total))
	case service.EventOrderPaid:
		zap.L().Info("notify: payment completed",
			zap.String("order_no", ev.OrderNo),
			zap.Int64("user_id", ev.UserID))
	case service.EventOrderCancelled:
		zap.L().Info("notify: order cancelled",
			zap.String("order_no", ev.OrderNo),
			zap.Int64("user_id", ev.UserID))
	case service.EventOrderStatus:
		zap.L().Info("notify: order status changed",
			zap.String("order_no", ev.OrderNo),
			zap.String("status", string(ev.Status)))
	default:
		zap.L().Warn("unknown event type", zap.String("type", ev.Type))
	}

	if err := d.Ack(false); err != nil {
		zap.L().Warn("failed to ack message", zap.Error(err))
	}
}
