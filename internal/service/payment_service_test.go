package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
)

// fakeGateway 模拟网关的 token 签发与支付查询两个端点
func fakeGateway(t *testing.T, status string, merchantUID string, amount int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/users/getToken":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["imp_key"] == "" || body["imp_secret"] == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code":     0,
				"response": map[string]string{"access_token": "test-token"},
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/payments/"):
			if r.Header.Get("Authorization") != "test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			impUID := strings.TrimPrefix(r.URL.Path, "/payments/")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0,
				"response": map[string]interface{}{
					"imp_uid":      impUID,
					"merchant_uid": merchantUID,
					"status":       status,
					"amount":       amount,
					"paid_at":      time.Now().Unix(),
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestVerifier(t *testing.T, baseURL string) *PaymentService {
	t.Helper()
	svc, err := NewPaymentService(&config.PaymentConfig{
		BaseURL:        baseURL,
		APIKey:         "key",
		APISecret:      "secret",
		TimeoutSeconds: 2,
	})
	if err != nil {
		t.Fatalf("NewPaymentService: %v", err)
	}
	return svc
}

func TestVerifySuccess(t *testing.T) {
	gw := fakeGateway(t, "paid", "ORD-20250131-000001", 48000)
	defer gw.Close()

	svc := newTestVerifier(t, gw.URL)
	pay, err := svc.Verify(context.Background(), VerifyRequest{
		PaymentID: "imp_123",
		OrderNo:   "ORD-20250131-000001",
		Amount:    48000,
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if pay.TransactionID != "imp_123" {
		t.Errorf("TransactionID = %s, want imp_123", pay.TransactionID)
	}
	if pay.Amount != 48000 {
		t.Errorf("Amount = %d, want 48000", pay.Amount)
	}
}

func TestVerifyFailClosedOnGatewayStatus(t *testing.T) {
	// 网关状态为 failed，即使订单号和金额都匹配也必须判为失败
	gw := fakeGateway(t, "failed", "ORD-20250131-000001", 48000)
	defer gw.Close()

	svc := newTestVerifier(t, gw.URL)
	if _, err := svc.Verify(context.Background(), VerifyRequest{
		PaymentID: "imp_123",
		OrderNo:   "ORD-20250131-000001",
		Amount:    48000,
	}); err == nil {
		t.Fatal("expected verification failure for status=failed")
	}
}

func TestVerifyOrderNoMismatch(t *testing.T) {
	gw := fakeGateway(t, "paid", "ORD-20250131-000999", 48000)
	defer gw.Close()

	svc := newTestVerifier(t, gw.URL)
	if _, err := svc.Verify(context.Background(), VerifyRequest{
		PaymentID: "imp_123",
		OrderNo:   "ORD-20250131-000001",
		Amount:    48000,
	}); err == nil {
		t.Fatal("expected verification failure for merchant order number mismatch")
	}
}

func TestVerifyAmountMismatch(t *testing.T) {
	gw := fakeGateway(t, "paid", "ORD-20250131-000001", 47999)
	defer gw.Close()

	svc := newTestVerifier(t, gw.URL)
	if _, err := svc.Verify(context.Background(), VerifyRequest{
		PaymentID: "imp_123",
		OrderNo:   "ORD-20250131-000001",
		Amount:    48000,
	}); err == nil {
		t.Fatal("expected verification failure for amount mismatch")
	}
}

func TestVerifyGatewayUnreachable(t *testing.T) {
	gw := fakeGateway(t, "paid", "ORD-20250131-000001", 48000)
	gw.Close() // 直接关掉，模拟网关不可达

	svc := newTestVerifier(t, gw.URL)
	if _, err := svc.Verify(context.Background(), VerifyRequest{
		PaymentID: "imp_123",
		OrderNo:   "ORD-20250131-000001",
		Amount:    48000,
	}); err == nil {
		t.Fatal("expected verification failure when gateway is unreachable")
	}
}

func TestMissingCredentials(t *testing.T) {
	// 密钥缺失是配置错误，构造即失败
	if _, err := NewPaymentService(&config.PaymentConfig{BaseURL: "http://127.0.0.1:1"}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
