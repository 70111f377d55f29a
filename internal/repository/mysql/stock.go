package mysql

import (
	"gorm.io/gorm"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/product"
)

// DecrementStock 条件扣减库存：stock = stock - qty WHERE stock >= qty。
// 未命中任何行说明库存不够，并发下单时也不会把库存减成负数。
// 商品是否可售由调用方在行锁内校验。通常在事务内调用，tx 为事务句柄。
func DecrementStock(tx *gorm.DB, productID, qty int64) error {
	res := tx.Model(&product.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 读一次当前库存，给出具体原因；商品不存在时原样返回 not found
		var p product.Product
		if err := tx.First(&p, productID).Error; err != nil {
			return err
		}
		return &product.InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Available: p.Stock,
			Requested: qty,
		}
	}
	return nil
}

// IncrementStock 增加库存，用于订单取消回补和后台正向调整
func IncrementStock(tx *gorm.DB, productID, qty int64) error {
	return tx.Model(&product.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}
