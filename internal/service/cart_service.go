package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/cart"
	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/datamodels/product"
)

// CartService 购物车服务
type CartService struct {
	cartRepo    cart.Repository
	productRepo product.Repository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo cart.Repository, productRepo product.Repository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// CartLine 购物车行视图：实时商品信息 + 变价标记
type CartLine struct {
	Item         *cart.Item       `json:"item"`
	Product      *product.Product `json:"product"`
	PriceChanged bool             `json:"price_changed"` // 加购后商品价格发生过变化
	Unavailable  bool             `json:"unavailable"`   // 商品已下架或库存不足
	LineTotal    int64            `json:"line_total"`    // 按实时价计算
}

// CartView 购物车整体视图
type CartView struct {
	Lines    []*CartLine `json:"lines"`
	Subtotal int64       `json:"subtotal"`
}

// List 返回按实时商品状态解析后的购物车
func (s *CartService) List(ctx context.Context, userID int64) (*CartView, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Lines: make([]*CartLine, 0, len(items))}
	for _, item := range items {
		line := &CartLine{Item: item}
		p, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				line.Unavailable = true
				view.Lines = append(view.Lines, line)
				continue
			}
			return nil, err
		}
		line.Product = p
		line.PriceChanged = p.Price != item.PriceAtAdd
		line.Unavailable = !p.Active() || p.Stock < item.Quantity
		line.LineTotal = p.Price * item.Quantity
		if !line.Unavailable {
			view.Subtotal += line.LineTotal
		}
		view.Lines = append(view.Lines, line)
	}
	return view, nil
}

// Add 加入购物车，已有相同商品+选项时合并数量
func (s *CartService) Add(ctx context.Context, userID, productID, qty int64, options string) (*cart.Item, error) {
	if qty <= 0 {
		return nil, errors.New("数量必须大于 0")
	}
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("商品不存在")
		}
		return nil, err
	}
	if !p.Active() {
		return nil, fmt.Errorf("商品 %s 已下架", p.Name)
	}

	existing, err := s.cartRepo.GetLine(ctx, userID, productID, options)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.Quantity += qty
		if p.Stock < existing.Quantity {
			return nil, fmt.Errorf("商品 %s 库存不足，剩余 %d 件", p.Name, p.Stock)
		}
		if err := s.cartRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	if p.Stock < qty {
		return nil, fmt.Errorf("商品 %s 库存不足，剩余 %d 件", p.Name, p.Stock)
	}
	item := &cart.Item{
		UserID:     userID,
		ProductID:  productID,
		Options:    options,
		Quantity:   qty,
		PriceAtAdd: p.Price,
	}
	if err := s.cartRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateQuantity 修改购物车行数量
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID, qty int64) (*cart.Item, error) {
	if qty <= 0 {
		return nil, errors.New("数量必须大于 0")
	}
	item, err := s.cartRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("购物车行不存在")
		}
		return nil, err
	}
	p, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("商品不存在")
		}
		return nil, err
	}
	if p.Stock < qty {
		return nil, fmt.Errorf("商品 %s 库存不足，剩余 %d 件", p.Name, p.Stock)
	}
	item.Quantity = qty
	if err := s.cartRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove 删除购物车行
func (s *CartService) Remove(ctx context.Context, userID, itemID int64) error {
	return s.cartRepo.Remove(ctx, userID, itemID)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.cartRepo.Clear(ctx, userID)
}
