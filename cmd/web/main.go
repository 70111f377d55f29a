package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/logging"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/server"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		panic(err)
	}

	logging.Init(false)
	zap.L().Info("log init success")

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr), iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		zap.L().Fatal("failed to run web server", zap.Error(err))
	}
}
