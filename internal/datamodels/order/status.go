package order

// Status 订单履约状态
type Status string

const (
	StatusOrderConfirmed  Status = "order_confirmed"  // 已下单
	StatusPreparing       Status = "preparing"        // 备货中
	StatusShippingStarted Status = "shipping_started" // 已发货
	StatusInDelivery      Status = "in_delivery"      // 配送中
	StatusDelivered       Status = "delivered"        // 已送达
	StatusCancelled       Status = "cancelled"        // 已取消
)

// forward 正向推进只能逐级进行，不允许跳级
var forward = map[Status]Status{
	StatusOrderConfirmed:  StatusPreparing,
	StatusPreparing:       StatusShippingStarted,
	StatusShippingStarted: StatusInDelivery,
	StatusInDelivery:      StatusDelivered,
}

// ValidStatus 校验状态取值
func ValidStatus(s Status) bool {
	switch s {
	case StatusOrderConfirmed, StatusPreparing, StatusShippingStarted,
		StatusInDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal 终态不允许任何转移
func Terminal(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable 仅已下单/备货中可以取消
func Cancellable(s Status) bool {
	return s == StatusOrderConfirmed || s == StatusPreparing
}

// CanTransition 集中判定状态迁移是否合法
func CanTransition(from, to Status) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if Terminal(from) {
		return false
	}
	if to == StatusCancelled {
		return Cancellable(from)
	}
	return forward[from] == to
}
