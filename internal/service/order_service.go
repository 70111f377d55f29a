package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/cart"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/order"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/product"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/repository/mysql"
)

// 收货电话的宽松校验：数字、+、-、空格、括号
var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)

// OrderService 订单服务：下单、查询、取消、状态流转、支付落账
type OrderService struct {
	db          *gorm.DB
	orderRepo   order.Repository
	verifier    PaymentVerifier
	orderNumGen *OrderNumberGenerator
	mqConn      *amqp.Connection
	checkoutCfg *config.CheckoutConfig
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	orderRepo order.Repository,
	verifier PaymentVerifier,
	orderNumGen *OrderNumberGenerator,
	mqConn *amqp.Connection,
	checkoutCfg *config.CheckoutConfig,
) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		verifier:    verifier,
		orderNumGen: orderNumGen,
		mqConn:      mqConn,
		checkoutCfg: checkoutCfg,
	}
}

// CheckoutRequest 下单请求（收货信息 + 支付方式）
type CheckoutRequest struct {
	RecipientName string              `json:"recipient_name"`
	Phone         string              `json:"phone"`
	PostalCode    string              `json:"postal_code"`
	Address       string              `json:"address"`
	AddressDetail string              `json:"address_detail"`
	Memo          string              `json:"memo"`
	PaymentMethod order.PaymentMethod `json:"payment_method"`
	Discount      int64               `json:"discount"`
}

// Validate 入参校验，不合法时不产生任何副作用
func (r *CheckoutRequest) Validate() error {
	if r.RecipientName == "" {
		return errors.New("收货人姓名不能为空")
	}
	if r.Phone == "" || !phonePattern.MatchString(r.Phone) {
		return errors.New("收货电话格式不正确")
	}
	if r.Address == "" {
		return errors.New("收货地址不能为空")
	}
	if len([]rune(r.Memo)) > 500 {
		return errors.New("配送要求最长 500 字")
	}
	if !order.ValidPaymentMethod(r.PaymentMethod) {
		return fmt.Errorf("不支持的支付方式: %s", r.PaymentMethod)
	}
	if r.Discount < 0 {
		return errors.New("折扣金额不能为负数")
	}
	return nil
}

// PriceChange 加购价与下单实时价不一致的行，随下单结果返回供前端提示
type PriceChange struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	PriceAtAdd int64  `json:"price_at_add"`
	LivePrice  int64  `json:"live_price"`
}

// CheckoutResult 下单结果
type CheckoutResult struct {
	Order        *order.Order  `json:"order"`
	PriceChanged []PriceChange `json:"price_changed,omitempty"`
}

// Checkout 从购物车创建订单。校验、库存扣减、订单写入、清空购物车
// 在同一个数据库事务内完成，任何一步失败整体回滚，不会留下半成品订单。
// 金额按商品实时价计算（加购价仅用于变价提示）。
func (s *OrderService) Checkout(ctx context.Context, userID int64, req *CheckoutRequest) (*CheckoutResult, error) {
	GetMonitor().RecordCheckoutRequest()
	if err := req.Validate(); err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}

	var result *CheckoutResult
	var err error
	// 订单号极小概率撞唯一索引（如 Redis 被清空后序列回绕），重试换号
	for attempt := 0; attempt < 3; attempt++ {
		var orderNo string
		orderNo, err = s.orderNumGen.Next()
		if err != nil {
			GetMonitor().RecordCheckoutError()
			return nil, fmt.Errorf("生成订单号失败: %w", err)
		}
		result, err = s.checkoutOnce(ctx, userID, orderNo, req)
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		zap.L().Warn("order number collision, retrying", zap.String("order_no", orderNo))
	}
	if err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}

	GetMonitor().RecordOrderCreated()
	publishOrderEvent(ctx, s.mqConn, EventOrderCreated, result.Order)
	return result, nil
}

func (s *OrderService) checkoutOnce(ctx context.Context, userID int64, orderNo string, req *CheckoutRequest) (*CheckoutResult, error) {
	var (
		created      order.Order
		priceChanged []PriceChange
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 取购物车
		var lines []*cart.Item
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return errors.New("购物车为空")
		}

		// 2) 逐行锁定商品、校验状态与库存，生成快照
		var subtotal int64
		items := make([]order.Item, 0, len(lines))
		for _, line := range lines {
			var p product.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&p, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("商品不存在 (ID: %d)", line.ProductID)
				}
				return err
			}
			if !p.Active() {
				return fmt.Errorf("商品 %s 已下架", p.Name)
			}
			if p.Stock < line.Quantity {
				return &product.InsufficientStockError{
					ProductID: p.ID,
					Name:      p.Name,
					Available: p.Stock,
					Requested: line.Quantity,
				}
			}

			if p.Price != line.PriceAtAdd {
				priceChanged = append(priceChanged, PriceChange{
					ProductID:  p.ID,
					Name:       p.Name,
					PriceAtAdd: line.PriceAtAdd,
					LivePrice:  p.Price,
				})
			}

			lineTotal := p.Price * line.Quantity
			subtotal += lineTotal
			items = append(items, order.Item{
				ProductID: p.ID,
				SKU:       p.SKU,
				Name:      p.Name,
				Price:     p.Price,
				Image:     p.Image,
				Category:  p.Category,
				Quantity:  line.Quantity,
				Options:   line.Options,
				LineTotal: lineTotal,
			})

			// 3) 条件扣减库存，并发下不会超卖
			if err := mysql.DecrementStock(tx, p.ID, line.Quantity); err != nil {
				return err
			}
		}

		// 4) 计算金额并写订单
		shippingFee := ComputeShippingFee(subtotal, s.checkoutCfg)
		created = order.Order{
			OrderNo:       orderNo,
			UserID:        userID,
			Subtotal:      subtotal,
			ShippingFee:   shippingFee,
			Discount:      req.Discount,
			Total:         ComputeTotal(subtotal, shippingFee, req.Discount),
			RecipientName: req.RecipientName,
			Phone:         req.Phone,
			PostalCode:    req.PostalCode,
			Address:       req.Address,
			AddressDetail: req.AddressDetail,
			Memo:          req.Memo,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: order.PaymentPending,
			Status:        order.StatusOrderConfirmed,
			Items:         items,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		// 5) 清空购物车
		if err := tx.Where("user_id = ?", userID).Delete(&cart.Item{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{Order: &created, PriceChanged: priceChanged}, nil
}

// OrderPage 分页结果：订单列表 + 分页信息 + 全量状态计数
type OrderPage struct {
	Orders       []*order.Order         `json:"orders"`
	Pagination   Pagination             `json:"pagination"`
	StatusCounts map[order.Status]int64 `json:"status_counts"`
}

// ListOrders 分页查询。q.UserID 为 0 表示后台全量查询。
// StatusCounts 始终统计整个范围，不随状态过滤变化。
func (s *OrderService) ListOrders(ctx context.Context, q order.ListQuery) (*OrderPage, error) {
	if q.Status != "" && !order.ValidStatus(q.Status) {
		return nil, fmt.Errorf("未知的订单状态: %s", q.Status)
	}
	list, total, err := s.orderRepo.List(ctx, q)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	counts, err := s.orderRepo.CountByStatus(ctx, q.UserID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return &OrderPage{
		Orders:       list,
		Pagination:   Paginate(q.Page, q.PageSize, total),
		StatusCounts: counts,
	}, nil
}

// GetOrder 查询本人订单
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*order.Order, error) {
	o, err := s.orderRepo.GetByUserAndID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("订单不存在")
		}
		return nil, err
	}
	return o, nil
}

// GetOrderByID 后台按 ID 查询订单
func (s *OrderService) GetOrderByID(ctx context.Context, orderID int64) (*order.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("订单不存在")
		}
		return nil, err
	}
	return o, nil
}

// Cancel 取消订单。仅 order_confirmed / preparing 可取消；
// 状态翻转与逐行库存回补在同一事务内完成。userID 为 0 时跳过归属校验（后台）。
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64, reason string) (*order.Order, error) {
	var cancelled *order.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("订单不存在")
			}
			return err
		}
		if userID > 0 && o.UserID != userID {
			return errors.New("订单不存在")
		}
		if !order.Cancellable(o.Status) {
			return fmt.Errorf("当前状态(%s)不可取消", o.Status)
		}

		note := reason
		if note == "" {
			note = "用户取消"
		}
		if err := tx.Model(&order.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
			"status":         order.StatusCancelled,
			"payment_status": order.PaymentCancelled,
			"admin_note":     note,
		}).Error; err != nil {
			return err
		}

		// 回补每一行下单时扣减的库存
		var items []order.Item
		if err := tx.Where("order_id = ?", o.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := mysql.IncrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		o.Status = order.StatusCancelled
		o.PaymentStatus = order.PaymentCancelled
		o.AdminNote = note
		o.Items = items
		cancelled = &o
		return nil
	})
	if err != nil {
		return nil, err
	}

	GetMonitor().RecordOrderCancelled()
	publishOrderEvent(ctx, s.mqConn, EventOrderCancelled, cancelled)
	return cancelled, nil
}

// TrackingInfo 发货物流信息
type TrackingInfo struct {
	Carrier           string     `json:"carrier"`
	TrackingNo        string     `json:"tracking_no"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

// UpdateStatus 后台推进订单状态，迁移合法性由状态机统一判定。
// 取消请走 Cancel（带库存回补），这里拒绝 cancelled 目标。
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, to order.Status, tracking *TrackingInfo) (*order.Order, error) {
	if to == order.StatusCancelled {
		return nil, errors.New("取消订单请使用取消接口")
	}
	if !order.ValidStatus(to) {
		return nil, fmt.Errorf("未知的订单状态: %s", to)
	}

	var from order.Status
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("订单不存在")
			}
			return err
		}
		from = o.Status
		if !order.CanTransition(o.Status, to) {
			return fmt.Errorf("不允许从 %s 变更为 %s", o.Status, to)
		}

		updates := map[string]interface{}{"status": to}
		if to == order.StatusShippingStarted && tracking != nil {
			updates["carrier"] = tracking.Carrier
			updates["tracking_no"] = tracking.TrackingNo
			updates["estimated_delivery"] = tracking.EstimatedDelivery
		}
		return tx.Model(&order.Order{}).Where("id = ?", o.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	zap.L().Info("order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	publishOrderEvent(ctx, s.mqConn, EventOrderStatus, updated)
	return updated, nil
}

// FinalizePayment 用网关验证结果落账。验证失败时支付状态置 failed，
// 订单状态不动，绝不在证据不足时把支付标成 completed。
func (s *OrderService) FinalizePayment(ctx context.Context, userID, orderID int64, gatewayPaymentID string) (*order.Order, error) {
	if gatewayPaymentID == "" {
		return nil, errors.New("缺少网关支付 ID")
	}
	if s.verifier == nil {
		return nil, errors.New("支付网关未配置")
	}

	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("订单不存在")
		}
		return nil, err
	}
	if userID > 0 && o.UserID != userID {
		return nil, errors.New("订单不存在")
	}
	if o.PaymentStatus == order.PaymentCompleted {
		return nil, errors.New("订单已完成支付")
	}
	if o.Status == order.StatusCancelled {
		return nil, errors.New("订单已取消，不能支付")
	}

	gw, err := s.verifier.Verify(ctx, VerifyRequest{
		PaymentID: gatewayPaymentID,
		OrderNo:   o.OrderNo,
		Amount:    o.Total,
	})
	if err != nil {
		GetMonitor().RecordPaymentFailed()
		// 记录失败状态，方便排查；订单保持可重新支付
		_ = s.db.WithContext(ctx).Model(&order.Order{}).Where("id = ?", o.ID).
			Update("payment_status", order.PaymentFailed).Error
		zap.L().Warn("payment verification failed",
			zap.String("order_no", o.OrderNo),
			zap.String("payment_id", gatewayPaymentID),
			zap.Error(err))
		return nil, fmt.Errorf("支付验证失败: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&order.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"payment_status": order.PaymentCompleted,
		"transaction_id": gw.TransactionID,
		"paid_at":        gw.PaidAt,
	}).Error; err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}

	GetMonitor().RecordPaymentVerified()
	updated, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	publishOrderEvent(ctx, s.mqConn, EventOrderPaid, updated)
	return updated, nil
}
