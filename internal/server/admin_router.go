package server

import (
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/auth"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/order"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/product"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/user"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/infra/mq"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/infra/redis"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/repository/mysql"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/service"
)

// adminOnly 后台接口要求 admin 角色
func adminOnly() iris.Handler {
	return func(ctx iris.Context) {
		if ctx.Values().GetStringDefault("role", "") != user.RoleAdmin {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "需要管理员权限"})
			return
		}
		ctx.Next()
	}
}

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	productSvc := service.NewProductService(db, productRepo)
	var verifier service.PaymentVerifier
	if ps, err := service.NewPaymentService(&cfg.Payment); err != nil {
		zap.L().Warn("payment gateway disabled", zap.Error(err))
	} else {
		verifier = ps
	}
	orderNumGen := service.NewOrderNumberGenerator(redisClient)
	orderSvc := service.NewOrderService(db, orderRepo, verifier, orderNumGen, mqConn, &cfg.Checkout)

	ring := auth.NewShardRing(cfg.Auth.TokenShards, cfg.Auth.ShardReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	api := app.Party("/api", authMiddleware(cfg, tokenCache), adminOnly())

	// ---------- 商品管理 ----------

	// 商品列表（后台用：返回所有商品）
	api.Get("/products", func(ctx iris.Context) {
		list, err := productSvc.ListAll(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 创建商品
	api.Post("/products", func(ctx iris.Context) {
		var p product.Product
		if err := ctx.ReadJSON(&p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if p.Name == "" || p.Price <= 0 || p.Stock < 0 {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "商品名称/价格/库存不合法"})
			return
		}
		if err := productSvc.Create(ctx.Request().Context(), &p); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 更新商品
	api.Put("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), int64(id))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
			Price       *int64  `json:"price"`
			Category    *string `json:"category"`
			Image       *string `json:"image"`
			Status      *int    `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "价格必须大于 0"})
				return
			}
			p.Price = *req.Price
		}
		if req.Category != nil {
			p.Category = *req.Category
		}
		if req.Image != nil {
			p.Image = *req.Image
		}
		if req.Status != nil {
			p.Status = *req.Status
		}
		if err := productSvc.Update(ctx.Request().Context(), p); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 库存调整（delta 可正可负，负向不会减出负库存）
	api.Post("/products/{id:uint64}/stock", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		var req struct {
			Delta int64 `json:"delta"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p, err := productSvc.AdjustStock(ctx.Request().Context(), int64(id), req.Delta)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// ---------- 订单管理 ----------

	// 全量订单列表（分页 + 可选状态过滤 + 状态计数）
	api.Get("/orders", func(ctx iris.Context) {
		page, _ := strconv.Atoi(ctx.URLParamDefault("page", "1"))
		pageSize, _ := strconv.Atoi(ctx.URLParamDefault("page_size", "20"))
		status := ctx.URLParam("status")

		result, err := orderSvc.ListOrders(ctx.Request().Context(), order.ListQuery{
			Status:   order.Status(status),
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": result})
	})

	// 订单详情
	api.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetUint64("id")
		o, err := orderSvc.GetOrderByID(ctx.Request().Context(), int64(oid))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 状态推进（发货时可带物流信息）
	api.Put("/orders/{id:uint64}/status", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetUint64("id")
		var req struct {
			Status            order.Status `json:"status"`
			Carrier           string       `json:"carrier"`
			TrackingNo        string       `json:"tracking_no"`
			EstimatedDelivery *time.Time   `json:"estimated_delivery"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		var tracking *service.TrackingInfo
		if req.Carrier != "" || req.TrackingNo != "" {
			tracking = &service.TrackingInfo{
				Carrier:           req.Carrier,
				TrackingNo:        req.TrackingNo,
				EstimatedDelivery: req.EstimatedDelivery,
			}
		}
		o, err := orderSvc.UpdateStatus(ctx.Request().Context(), int64(oid), req.Status, tracking)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 后台取消订单（带原因，回补库存）
	api.Post("/orders/{id:uint64}/cancel", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetUint64("id")
		var req struct {
			Reason string `json:"reason"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.Cancel(ctx.Request().Context(), 0, int64(oid), req.Reason)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 后台提交支付验证结果
	api.Post("/orders/{id:uint64}/payment", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetUint64("id")
		var req struct {
			PaymentID string `json:"payment_id"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.FinalizePayment(ctx.Request().Context(), 0, int64(oid), req.PaymentID)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------- 运行统计 ----------

	api.Get("/stats", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().GetStats()})
	})
}
