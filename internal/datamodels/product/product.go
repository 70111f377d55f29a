package product

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientStock 条件扣减库存未命中任何行时返回
var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientStockError 携带商品与剩余库存信息，方便前端提示
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("商品 %s 库存不足，剩余 %d 件（需要 %d 件）", e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Product 商品模型
type Product struct {
	ID          int64     `gorm:"primaryKey"`
	SKU         string    `gorm:"size:64;index"`
	Name        string    `gorm:"size:128;not null"`
	Description string    `gorm:"size:512"`
	Price       int64     `gorm:"not null"` // 分
	Stock       int64     `gorm:"not null"`
	Category    string    `gorm:"size:32;index"` // 分类：men(男士)、women(女士)、accessories(饰品)
	Image       string    `gorm:"size:255"`
	Status      int       `gorm:"index"` // 0:下线 1:正常
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Active 商品是否可售
func (p *Product) Active() bool {
	return p.Status == 1
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	ListOnline(ctx context.Context) ([]*Product, error)
	ListByCategory(ctx context.Context, category string) ([]*Product, error) // 按分类查询
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
