package order

import (
	"context"
	"time"
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PayCreditCard       PaymentMethod = "credit-card"
	PayBankTransfer     PaymentMethod = "bank-transfer"
	PayRealTimeTransfer PaymentMethod = "real-time-transfer"
	PayNaverPay         PaymentMethod = "naver-pay"
	PayKakaoPay         PaymentMethod = "kakao-pay"
	PayTossPay          PaymentMethod = "toss-pay"
)

// ValidPaymentMethod 校验支付方式取值
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PayCreditCard, PayBankTransfer, PayRealTimeTransfer, PayNaverPay, PayKakaoPay, PayTossPay:
		return true
	}
	return false
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Item 订单行，下单时对商品字段做不可变快照，后续商品改价/改名不影响历史订单
type Item struct {
	ID        int64  `gorm:"primaryKey"`
	OrderID   int64  `gorm:"index;not null"`
	ProductID int64  `gorm:"index;not null"`
	SKU       string `gorm:"size:64"`
	Name      string `gorm:"size:128;not null"`
	Price     int64  `gorm:"not null"` // 下单时单价（分）
	Image     string `gorm:"size:255"`
	Category  string `gorm:"size:32"`
	Quantity  int64  `gorm:"not null"`
	Options   string `gorm:"size:128"`
	LineTotal int64  `gorm:"not null"`
	CreatedAt time.Time
}

// Order 订单聚合。创建后仅 status、payment 相关字段与管理员备注可变。
type Order struct {
	ID      int64  `gorm:"primaryKey"`
	OrderNo string `gorm:"uniqueIndex;size:32;not null"` // 形如 ORD-20250131-000042
	UserID  int64  `gorm:"index;not null"`

	// 价格拆分，恒有 Total = Subtotal + ShippingFee - Discount
	Subtotal    int64 `gorm:"not null"`
	ShippingFee int64 `gorm:"not null"`
	Discount    int64 `gorm:"not null"`
	Total       int64 `gorm:"not null"`

	// 收货信息
	RecipientName string `gorm:"size:64;not null"`
	Phone         string `gorm:"size:32;not null"`
	PostalCode    string `gorm:"size:16"`
	Address       string `gorm:"size:255;not null"`
	AddressDetail string `gorm:"size:255"`
	Memo          string `gorm:"size:500"` // 配送要求，最长 500 字

	// 支付信息
	PaymentMethod PaymentMethod `gorm:"size:32;not null"`
	PaymentStatus PaymentStatus `gorm:"size:16;index;not null;default:pending"`
	TransactionID string        `gorm:"size:64"`
	PaidAt        *time.Time

	Status Status `gorm:"size:32;index;not null;default:order_confirmed"`

	// 物流信息（发货后填写）
	Carrier           string `gorm:"size:64"`
	TrackingNo        string `gorm:"size:64"`
	EstimatedDelivery *time.Time

	// 管理备注（含取消原因）
	AdminNote string `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []Item `gorm:"foreignKey:OrderID"`
}

// ListQuery 分页查询条件，UserID 为 0 时表示不限定用户（后台）
type ListQuery struct {
	UserID   int64
	Status   Status
	Page     int
	PageSize int
}

// Repository 订单仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByUserAndID(ctx context.Context, userID, id int64) (*Order, error)
	List(ctx context.Context, q ListQuery) ([]*Order, int64, error)
	CountByStatus(ctx context.Context, userID int64) (map[Status]int64, error)
}
