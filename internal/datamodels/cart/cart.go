package cart

import (
	"context"
	"time"
)

// Item 购物车行，按 (用户, 商品, 选项) 唯一
type Item struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"index:idx_cart_line,unique;not null"`
	ProductID int64     `gorm:"index:idx_cart_line,unique;not null"`
	Options   string    `gorm:"index:idx_cart_line,unique;size:128"` // 选项快照，如 "color=black;size=L"
	Quantity  int64     `gorm:"not null"`
	// PriceAtAdd 加购时的单价（分），结算按实时价计算，此字段仅用于变价提示
	PriceAtAdd int64 `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository 购物车仓储接口
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*Item, error)
	GetLine(ctx context.Context, userID, productID int64, options string) (*Item, error)
	GetByID(ctx context.Context, userID, itemID int64) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Remove(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error
}
