package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/product"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/repository/mysql"
)

type ProductService struct {
	db   *gorm.DB
	repo product.Repository
}

func NewProductService(db *gorm.DB, repo product.Repository) *ProductService {
	return &ProductService{db: db, repo: repo}
}

func (s *ProductService) ListOnline(ctx context.Context) ([]*product.Product, error) {
	return s.repo.ListOnline(ctx)
}

func (s *ProductService) ListAll(ctx context.Context) ([]*product.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]*product.Product, error) {
	return s.repo.ListByCategory(ctx, category)
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, p *product.Product) error {
	return s.repo.Create(ctx, p)
}

func (s *ProductService) Update(ctx context.Context, p *product.Product) error {
	return s.repo.Update(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AdjustStock 后台库存调整。负向调整走条件扣减，不会把库存调成负数。
func (s *ProductService) AdjustStock(ctx context.Context, id, delta int64) (*product.Product, error) {
	if delta == 0 {
		return nil, errors.New("调整数量不能为 0")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if delta > 0 {
			return mysql.IncrementStock(tx, id, delta)
		}
		return mysql.DecrementStock(tx, id, -delta)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
