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
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/infra/mq"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/infra/redis"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/middleware"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/repository/mysql"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/service"
)

// authMiddleware JWT 鉴权：先查 Redis 缓存，未命中再解析，身份放入请求值
func authMiddleware(cfg *config.Config, tokenCache *auth.TokenCache) iris.Handler {
	return func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}

		claims, err := tokenCache.Lookup(ctx.Request().Context(), token)
		if err != nil {
			zap.L().Warn("token cache lookup failed", zap.Error(err))
		}
		if claims == nil {
			claims, err = auth.ParseToken(&cfg.JWT, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
				return
			}
			if err := tokenCache.Store(ctx.Request().Context(), token, claims); err != nil {
				zap.L().Warn("cache token failed", zap.Error(err))
			}
		}

		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("username", claims.Username)
		ctx.Values().Set("role", claims.Role)
		ctx.Next()
	}
}

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	productSvc := service.NewProductService(db, productRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)

	var verifier service.PaymentVerifier
	if ps, err := service.NewPaymentService(&cfg.Payment); err != nil {
		// 密钥未配置时支付验证不可用，下单仍可进行
		zap.L().Warn("payment gateway disabled", zap.Error(err))
	} else {
		verifier = ps
	}
	orderNumGen := service.NewOrderNumberGenerator(redisClient)
	orderSvc := service.NewOrderService(db, orderRepo, verifier, orderNumGen, mqConn, &cfg.Checkout)

	ring := auth.NewShardRing(cfg.Auth.TokenShards, cfg.Auth.ShardReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
		})
	})

	// 用户注册/登录（简单示例）
	api.Post("/register", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.Register(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})

	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, err := userSvc.Login(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
	})

	// 需要登录的接口
	authAPI := api.Party("/", authMiddleware(cfg, tokenCache))

	// 登出：主动失效缓存的 token
	authAPI.Post("/logout", func(ctx iris.Context) {
		if err := tokenCache.Invalidate(ctx.Request().Context(), ctx.GetHeader("Authorization")); err != nil {
			zap.L().Warn("invalidate token failed", zap.Error(err))
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 商品列表（支持按分类筛选）
	authAPI.Get("/products", func(ctx iris.Context) {
		category := ctx.URLParam("category")
		var list []*product.Product
		var err error
		if category != "" {
			list, err = productSvc.ListByCategory(ctx.Request().Context(), category)
		} else {
			list, err = productSvc.ListOnline(ctx.Request().Context())
		}
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 商品详情
	authAPI.Get("/products/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), int64(pid))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// ---------------- 购物车 ----------------

	authAPI.Get("/cart", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		view, err := cartSvc.List(ctx.Request().Context(), userID)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": view})
	})

	authAPI.Post("/cart/items", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req struct {
			ProductID int64  `json:"product_id"`
			Quantity  int64  `json:"quantity"`
			Options   string `json:"options"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		item, err := cartSvc.Add(ctx.Request().Context(), userID, req.ProductID, req.Quantity, req.Options)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": item})
	})

	authAPI.Put("/cart/items/{id:uint64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		itemID, _ := ctx.Params().GetUint64("id")
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		item, err := cartSvc.UpdateQuantity(ctx.Request().Context(), userID, int64(itemID), req.Quantity)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": item})
	})

	authAPI.Delete("/cart/items/{id:uint64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		itemID, _ := ctx.Params().GetUint64("id")
		if err := cartSvc.Remove(ctx.Request().Context(), userID, int64(itemID)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	authAPI.Delete("/cart", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		if err := cartSvc.Clear(ctx.Request().Context(), userID); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// ---------------- 订单 ----------------

	// 从购物车下单
	authAPI.Post("/orders", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req service.CheckoutRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		result, err := orderSvc.Checkout(ctx.Request().Context(), userID, &req)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": result})
	})

	// 我的订单（分页 + 状态计数）
	authAPI.Get("/orders", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		page, _ := strconv.Atoi(ctx.URLParamDefault("page", "1"))
		pageSize, _ := strconv.Atoi(ctx.URLParamDefault("page_size", "10"))
		status := ctx.URLParam("status")

		result, err := orderSvc.ListOrders(ctx.Request().Context(), order.ListQuery{
			UserID:   userID,
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
	authAPI.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		oid, _ := ctx.Params().GetUint64("id")
		o, err := orderSvc.GetOrder(ctx.Request().Context(), userID, int64(oid))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 取消订单
	authAPI.Post("/orders/{id:uint64}/cancel", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		oid, _ := ctx.Params().GetUint64("id")
		var req struct {
			Reason string `json:"reason"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.Cancel(ctx.Request().Context(), userID, int64(oid), req.Reason)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 提交支付验证（客户端完成网关支付后回传支付 ID）
	authAPI.Post("/orders/{id:uint64}/payment", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		oid, _ := ctx.Params().GetUint64("id")
		var req struct {
			PaymentID string `json:"payment_id"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.FinalizePayment(ctx.Request().Context(), userID, int64(oid), req.PaymentID)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})
}
