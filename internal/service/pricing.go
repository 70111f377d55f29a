package service

import (
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
)

// ComputeShippingFee 满额免运费，否则收固定运费。门槛与运费都来自配置。
func ComputeShippingFee(subtotal int64, cfg *config.CheckoutConfig) int64 {
	if subtotal >= cfg.FreeShippingThreshold {
		return 0
	}
	return cfg.ShippingFee
}

// ComputeTotal 订单总额恒等式：total = subtotal + shippingFee - discount
func ComputeTotal(subtotal, shippingFee, discount int64) int64 {
	return subtotal + shippingFee - discount
}

// Pagination 分页元信息
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	TotalCount int64 `json:"total_count"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Paginate 根据总数计算分页元信息
func Paginate(page, pageSize int, total int64) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: total,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}
