package service

import (
	"testing"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
)

func TestComputeShippingFee(t *testing.T) {
	cfg := &config.CheckoutConfig{FreeShippingThreshold: 50000, ShippingFee: 3000}
	cases := []struct {
		subtotal int64
		want     int64
	}{
		{0, 3000},
		{49999, 3000},
		{50000, 0},
		{50001, 0},
	}
	for _, c := range cases {
		if got := ComputeShippingFee(c.subtotal, cfg); got != c.want {
			t.Errorf("ComputeShippingFee(%d) = %d, want %d", c.subtotal, got, c.want)
		}
	}
}

func TestComputeTotal(t *testing.T) {
	// 商品A 20000x2 + 商品B 5000x1 = 45000，未满门槛运费 3000
	subtotal := int64(20000*2 + 5000*1)
	cfg := &config.CheckoutConfig{FreeShippingThreshold: 50000, ShippingFee: 3000}
	fee := ComputeShippingFee(subtotal, cfg)
	if fee != 3000 {
		t.Fatalf("fee = %d, want 3000", fee)
	}
	total := ComputeTotal(subtotal, fee, 0)
	if total != 48000 {
		t.Errorf("total = %d, want 48000", total)
	}
	// 恒等式 total = subtotal + fee - discount
	if got := ComputeTotal(subtotal, fee, 5000); got != subtotal+fee-5000 {
		t.Errorf("total with discount = %d, want %d", got, subtotal+fee-5000)
	}
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		page, size int
		total      int64
		wantPages  int
		hasNext    bool
		hasPrev    bool
	}{
		{1, 10, 0, 0, false, false},
		{1, 10, 10, 1, false, false},
		{1, 10, 11, 2, true, false},
		{2, 10, 11, 2, false, true},
		{3, 10, 25, 3, false, true},
		{0, 0, 25, 3, true, false}, // 默认 page=1 size=10
	}
	for _, c := range cases {
		p := Paginate(c.page, c.size, c.total)
		if p.TotalPages != c.wantPages {
			t.Errorf("Paginate(%d,%d,%d).TotalPages = %d, want %d", c.page, c.size, c.total, p.TotalPages, c.wantPages)
		}
		if p.HasNext != c.hasNext {
			t.Errorf("Paginate(%d,%d,%d).HasNext = %v, want %v", c.page, c.size, c.total, p.HasNext, c.hasNext)
		}
		if p.HasPrev != c.hasPrev {
			t.Errorf("Paginate(%d,%d,%d).HasPrev = %v, want %v", c.page, c.size, c.total, p.HasPrev, c.hasPrev)
		}
		if p.TotalCount != c.total {
			t.Errorf("TotalCount = %d, want %d", p.TotalCount, c.total)
		}
	}
}
