package logging

import (
	"log"
	"sync"

	"go.uber.org/zap"
)

var once sync.Once

// Init 初始化全局 zap logger，业务代码统一使用 zap.L()
func Init(debug bool) {
	once.Do(func() {
		var (
			logger *zap.Logger
			err    error
		)
		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
		zap.ReplaceGlobals(logger)
	})
}
