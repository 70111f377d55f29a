package order

import "testing"

func TestForwardTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusOrderConfirmed, StatusPreparing, true},
		{StatusPreparing, StatusShippingStarted, true},
		{StatusShippingStarted, StatusInDelivery, true},
		{StatusInDelivery, StatusDelivered, true},
		// 不允许跳级
		{StatusOrderConfirmed, StatusDelivered, false},
		{StatusOrderConfirmed, StatusShippingStarted, false},
		{StatusPreparing, StatusInDelivery, false},
		// 不允许回退
		{StatusInDelivery, StatusPreparing, false},
		{StatusDelivered, StatusInDelivery, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestCancelTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		allowed bool
	}{
		{StatusOrderConfirmed, true},
		{StatusPreparing, true},
		{StatusShippingStarted, false},
		{StatusInDelivery, false},
		{StatusDelivered, false},
		{StatusCancelled, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, StatusCancelled); got != c.allowed {
			t.Errorf("CanTransition(%s, cancelled) = %v, want %v", c.from, got, c.allowed)
		}
		if got := Cancellable(c.from); got != c.allowed {
			t.Errorf("Cancellable(%s) = %v, want %v", c.from, got, c.allowed)
		}
	}
}

func TestTerminalStatesRejectAll(t *testing.T) {
	all := []Status{
		StatusOrderConfirmed, StatusPreparing, StatusShippingStarted,
		StatusInDelivery, StatusDelivered, StatusCancelled,
	}
	for _, terminal := range []Status{StatusDelivered, StatusCancelled} {
		for _, to := range all {
			if CanTransition(terminal, to) {
				t.Errorf("terminal state %s must not transition to %s", terminal, to)
			}
		}
	}
}

func TestInvalidStatus(t *testing.T) {
	if ValidStatus("shipped") {
		t.Error("unknown status should be invalid")
	}
	if CanTransition("shipped", StatusDelivered) {
		t.Error("transition from unknown status should be rejected")
	}
	if CanTransition(StatusOrderConfirmed, "shipped") {
		t.Error("transition to unknown status should be rejected")
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []PaymentMethod{
		PayCreditCard, PayBankTransfer, PayRealTimeTransfer,
		PayNaverPay, PayKakaoPay, PayTossPay,
	} {
		if !ValidPaymentMethod(m) {
			t.Errorf("%s should be valid", m)
		}
	}
	if ValidPaymentMethod("paypal") {
		t.Error("paypal is not a supported method")
	}
}
