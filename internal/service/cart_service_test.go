package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/cart"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/product"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/repository/mysql"
)

func newCartEnv(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cart.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&product.Product{}, &cart.Item{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewCartService(mysql.NewCartRepository(db), mysql.NewProductRepository(db)), db
}

func TestAddMergesSameLine(t *testing.T) {
	svc, db := newCartEnv(t)
	p := seedProduct(t, db, 10, 20000)

	if _, err := svc.Add(context.Background(), 7, p.ID, 1, "color=black"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	item, err := svc.Add(context.Background(), 7, p.ID, 2, "color=black")
	if err != nil {
		t.Fatalf("Add merge: %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("merged quantity = %d, want 3", item.Quantity)
	}
	var count int64
	db.Model(&cart.Item{}).Where("user_id = ?", 7).Count(&count)
	if count != 1 {
		t.Errorf("cart lines = %d, want 1 merged line", count)
	}
}

func TestUpdateQuantityMissingProduct(t *testing.T) {
	svc, db := newCartEnv(t)
	p := seedProduct(t, db, 10, 20000)
	item, err := svc.Add(context.Background(), 7, p.ID, 1, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// 商品被删除后，改数量必须报商品不存在，而不是跳过校验直接改
	if err := db.Delete(&product.Product{}, p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateQuantity(context.Background(), 7, item.ID, 5); err == nil || !strings.Contains(err.Error(), "商品不存在") {
		t.Fatalf("err = %v, want missing product rejection", err)
	}
	var got cart.Item
	if err := db.First(&got, item.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 1 {
		t.Errorf("quantity = %d, want 1 (unchanged)", got.Quantity)
	}
}

func TestUpdateQuantityStockLimit(t *testing.T) {
	svc, db := newCartEnv(t)
	p := seedProduct(t, db, 3, 20000)
	item, err := svc.Add(context.Background(), 7, p.ID, 1, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.UpdateQuantity(context.Background(), 7, item.ID, 5); err == nil || !strings.Contains(err.Error(), "库存不足") {
		t.Fatalf("err = %v, want stock limit rejection", err)
	}
}
