package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]*cart.Item, error) {
	var list []*cart.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *cartRepo) GetLine(ctx context.Context, userID, productID int64, options string) (*cart.Item, error) {
	var item cart.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND options = ?", userID, productID, options).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) GetByID(ctx context.Context, userID, itemID int64) (*cart.Item, error) {
	var item cart.Item
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) Create(ctx context.Context, item *cart.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepo) Update(ctx context.Context, item *cart.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *cartRepo) Remove(ctx context.Context, userID, itemID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&cart.Item{}).Error
}

func (r *cartRepo) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&cart.Item{}).Error
}
