package mysql

import (
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/product"
)

func newStockDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "stock.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&product.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestDecrementStockConditional(t *testing.T) {
	conn := newStockDB(t)
	p := &product.Product{Name: "니트 가디건", Price: 35000, Stock: 3, Status: 1}
	if err := conn.Create(p).Error; err != nil {
		t.Fatal(err)
	}

	if err := DecrementStock(conn, p.ID, 2); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}

	// 剩 1 件时再扣 2 件必须失败，且库存不动
	err := DecrementStock(conn, p.ID, 2)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	var ise *product.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if ise.Available != 1 || ise.Requested != 2 {
		t.Errorf("error detail = %+v, want available 1 requested 2", ise)
	}

	var got product.Product
	if err := conn.First(&got, p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Stock != 1 {
		t.Errorf("stock = %d, want 1", got.Stock)
	}
}

func TestDecrementStockMissingProduct(t *testing.T) {
	conn := newStockDB(t)
	err := DecrementStock(conn, 999, 1)
	if err == nil {
		t.Fatal("expected error for missing product")
	}
	// 商品不存在与库存不足是两种错误
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want record not found", err)
	}
	if errors.Is(err, product.ErrInsufficientStock) {
		t.Error("missing product must not be reported as insufficient stock")
	}
}

func TestIncrementStock(t *testing.T) {
	conn := newStockDB(t)
	p := &product.Product{Name: "니트 가디건", Price: 35000, Stock: 1, Status: 1}
	if err := conn.Create(p).Error; err != nil {
		t.Fatal(err)
	}
	if err := IncrementStock(conn, p.ID, 4); err != nil {
		t.Fatalf("IncrementStock: %v", err)
	}
	var got product.Product
	if err := conn.First(&got, p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Stock != 5 {
		t.Errorf("stock = %d, want 5", got.Stock)
	}
}
