package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Arctictarzan/vibe-coding-shoppingmall-demo-sub000/internal/config"
)

// VerifyRequest 支付验证请求：客户端上报的网关支付 ID 与服务端期望值
type VerifyRequest struct {
	PaymentID string // 网关侧支付标识（imp_uid）
	OrderNo   string // 期望的商户订单号
	Amount    int64  // 期望的支付金额（分），整数精确相等
}

// GatewayPayment 网关返回的支付记录，验证通过后写入订单
type GatewayPayment struct {
	TransactionID string
	Status        string
	OrderNo       string
	Amount        int64
	PaidAt        time.Time
}

// PaymentVerifier 支付验证能力接口，便于更换网关或在测试中替换
type PaymentVerifier interface {
	Verify(ctx context.Context, req VerifyRequest) (*GatewayPayment, error)
}

// PaymentService 对接支付网关（token 签发 + 按支付 ID 查询）。
// 设计为 fail-closed：网关不可达、超时、字段不匹配一律按验证失败处理，
// 绝不把可疑支付当成成功。
type PaymentService struct {
	cfg    *config.PaymentConfig
	client *http.Client
}

// NewPaymentService 创建支付服务。密钥缺失属于配置错误，直接失败。
func NewPaymentService(cfg *config.PaymentConfig) (*PaymentService, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("payment gateway credentials missing")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaymentService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type gatewayEnvelope struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type paymentResponse struct {
	ImpUID      string `json:"imp_uid"`
	MerchantUID string `json:"merchant_uid"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	PaidAt      int64  `json:"paid_at"` // unix 秒
}

// getToken 用商户密钥换取短期 access token
func (s *PaymentService) getToken(ctx context.Context) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"imp_key":    s.cfg.APIKey,
		"imp_secret": s.cfg.APISecret,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/users/getToken", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway token request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway token request failed: status %d", resp.StatusCode)
	}

	var env gatewayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if env.Code != 0 {
		return "", fmt.Errorf("gateway token rejected: %s", env.Message)
	}
	var tok tokenResponse
	if err := json.Unmarshal(env.Response, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("gateway returned empty token")
	}
	return tok.AccessToken, nil
}

// getPayment 按网关支付 ID 查询支付记录
func (s *PaymentService) getPayment(ctx context.Context, token, paymentID string) (*paymentResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway payment lookup failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway payment lookup failed: status %d", resp.StatusCode)
	}

	var env gatewayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("gateway payment lookup rejected: %s", env.Message)
	}
	var pay paymentResponse
	if err := json.Unmarshal(env.Response, &pay); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	return &pay, nil
}

// Verify 单次验证，无重试：
//  1. 网关状态必须是 paid
//  2. 商户订单号必须与期望完全一致
//  3. 金额必须整数精确相等
func (s *PaymentService) Verify(ctx context.Context, req VerifyRequest) (*GatewayPayment, error) {
	token, err := s.getToken(ctx)
	if err != nil {
		zap.L().Warn("payment token fetch failed", zap.Error(err))
		return nil, err
	}

	pay, err := s.getPayment(ctx, token, req.PaymentID)
	if err != nil {
		zap.L().Warn("payment lookup failed",
			zap.String("payment_id", req.PaymentID), zap.Error(err))
		return nil, err
	}

	if pay.Status != "paid" {
		return nil, fmt.Errorf("支付未完成，网关状态: %s", pay.Status)
	}
	if pay.MerchantUID != req.OrderNo {
		return nil, fmt.Errorf("支付订单号不匹配: 期望 %s，实际 %s", req.OrderNo, pay.MerchantUID)
	}
	if pay.Amount != req.Amount {
		return nil, fmt.Errorf("支付金额不匹配: 期望 %d，实际 %d", req.Amount, pay.Amount)
	}

	return &GatewayPayment{
		TransactionID: pay.ImpUID,
		Status:        pay.Status,
		OrderNo:       pay.MerchantUID,
		Amount:        pay.Amount,
		PaidAt:        time.Unix(pay.PaidAt, 0),
	}, nil
}
