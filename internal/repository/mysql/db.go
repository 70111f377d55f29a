package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/cart"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/order"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/product"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		// TranslateError 让唯一索引冲突统一映射为 gorm.ErrDuplicatedKey，订单号重试依赖它
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}

		if err = db.AutoMigrate(
			&user.User{},
			&product.Product{},
			&cart.Item{},
			&order.Order{},
			&order.Item{},
		); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
