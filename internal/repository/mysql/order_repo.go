package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByUserAndID(ctx context.Context, userID, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, q order.ListQuery) ([]*order.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&order.Order{})
	if q.UserID > 0 {
		base = base.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}
	size := q.PageSize
	if size <= 0 {
		size = 10
	}

	var list []*order.Order
	if err := base.
		Preload("Items").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// CountByStatus 统计各状态订单数，不受分页和状态过滤影响（前端状态 tab 计数用）
func (r *orderRepo) CountByStatus(ctx context.Context, userID int64) (map[order.Status]int64, error) {
	type row struct {
		Status order.Status
		Cnt    int64
	}
	query := r.db.WithContext(ctx).Model(&order.Order{}).
		Select("status, COUNT(*) AS cnt").
		Group("status")
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[order.Status]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Cnt
	}
	return counts, nil
}
