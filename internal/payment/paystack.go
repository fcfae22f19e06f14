package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/SwiftSoko/SwiftSoko/internal/common/middleware"
)

// Gateway 外部支付处理方抽象。金额一律为最小货币单位。
type Gateway interface {
	InitiatePayment(ctx context.Context, email string, amount int64, reference string) (*InitiateResult, error)
	VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error)
	CreateRecipient(ctx context.Context, name, accountNumber, bankCode string) (string, error)
	Transfer(ctx context.Context, recipientCode string, amount int64, reference, reason string) (*TransferResult, error)
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}

// InitiateResult 充值初始化结果。
type InitiateResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult 充值核验结果。
type VerifyResult struct {
	Status    string `json:"status"` // 网关侧交易状态，如 success / failed / abandoned
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// Success 网关是否明确标记成功。
func (v *VerifyResult) Success() bool { return v.Status == "success" }

// TransferResult 提现转账结果。
type TransferResult struct {
	Status       string `json:"status"`
	TransferCode string `json:"transfer_code"`
}

// Accepted 转账是否被网关接受（success 或进入网关侧处理队列）。
func (t *TransferResult) Accepted() bool {
	return t.Status == "success" || t.Status == "pending"
}

// PaystackClient Paystack HTTP 客户端。所有调用带超时并过熔断器。
type PaystackClient struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	currency      string
	client        *http.Client
	breaker       *middleware.CircuitBreaker
}

// NewPaystackClient 创建 Paystack 客户端。
func NewPaystackClient(cfg config.GatewayConfig) *PaystackClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaystackClient{
		baseURL:       cfg.BaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.ResolveWebhookSecret(),
		currency:      cfg.Currency,
		client:        &http.Client{Timeout: timeout},
		breaker:       middleware.NewCircuitBreaker("paystack", 5, 30*time.Second),
	}
}

// paystackEnvelope Paystack 统一响应包络。
type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *PaystackClient) call(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	return p.breaker.Call(ctx, func() error {
		var body io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			body = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+p.secretKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var envelope paystackEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
		if resp.StatusCode >= 400 || !envelope.Status {
			return fmt.Errorf("gateway rejected request: %s (http %d)", envelope.Message, resp.StatusCode)
		}
		if out != nil {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				return fmt.Errorf("decode gateway data: %w", err)
			}
		}
		return nil
	})
}

// InitiatePayment 初始化一笔充值，返回网关托管的支付链接。
func (p *PaystackClient) InitiatePayment(ctx context.Context, email string, amount int64, reference string) (*InitiateResult, error) {
	payload := map[string]interface{}{
		"email":     email,
		"amount":    amount,
		"currency":  p.currency,
		"reference": reference,
	}
	var out InitiateResult
	if err := p.call(ctx, http.MethodPost, "/transaction/initialize", payload, &out); err != nil {
		return nil, apperr.Gateway("payment initiation failed", err)
	}
	return &out, nil
}

// VerifyPayment 向网关核验一笔充值的最终状态。
func (p *PaystackClient) VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error) {
	var out VerifyResult
	if err := p.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &out); err != nil {
		return nil, apperr.Gateway("payment verification failed", err)
	}
	return &out, nil
}

// CreateRecipient 注册提现收款人，返回网关侧 recipient_code。
func (p *PaystackClient) CreateRecipient(ctx context.Context, name, accountNumber, bankCode string) (string, error) {
	payload := map[string]interface{}{
		"type":           "mobile_money",
		"name":           name,
		"account_number": accountNumber,
		"bank_code":      bankCode,
		"currency":       p.currency,
	}
	var out struct {
		RecipientCode string `json:"recipient_code"`
	}
	if err := p.call(ctx, http.MethodPost, "/transferrecipient", payload, &out); err != nil {
		return "", apperr.Gateway("recipient creation failed", err)
	}
	return out.RecipientCode, nil
}

// Transfer 向已注册收款人发起提现转账。
func (p *PaystackClient) Transfer(ctx context.Context, recipientCode string, amount int64, reference, reason string) (*TransferResult, error) {
	payload := map[string]interface{}{
		"source":    "balance",
		"recipient": recipientCode,
		"amount":    amount,
		"currency":  p.currency,
		"reference": reference,
		"reason":    reason,
	}
	var out TransferResult
	if err := p.call(ctx, http.MethodPost, "/transfer", payload, &out); err != nil {
		return nil, apperr.Gateway("transfer failed", err)
	}
	return &out, nil
}

// VerifyWebhookSignature 校验回调签名：对原始 body 做 HMAC-SHA512，
// 常数时间比较。secret 未配置时一律拒绝（fail closed）。
func (p *PaystackClient) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return VerifySignature(p.webhookSecret, rawBody, signature)
}

// VerifySignature 独立出来便于单测。
func VerifySignature(secret string, rawBody []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
