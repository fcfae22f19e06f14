package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL 验证码有效期。
const DefaultTTL = 5 * time.Minute

// codeDigits 验证码位数。
const codeDigits = 6

// GenerateCode 生成 6 位数字验证码（crypto/rand）。
func GenerateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Store 验证码存取，redis 保管，过期自动清理。
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func key(contact string) string {
	return "otp:" + contact
}

// Issue 为联系方式签发验证码，覆盖旧码。
func (s *Store) Issue(ctx context.Context, contact string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, key(contact), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify 校验并消费验证码：GETDEL 保证一码只能用一次。
// 校验失败时验证码已被取走，防止暴力尝试。
func (s *Store) Verify(ctx context.Context, contact, code string) error {
	stored, err := s.client.GetDel(ctx, key(contact)).Result()
	if err == redis.Nil {
		return apperr.Validation("otp expired or not requested")
	}
	if err != nil {
		return err
	}
	if stored != code {
		return apperr.Validation("invalid otp")
	}
	return nil
}

// Notifier 验证码投递抽象。真实短信/邮件通道在本服务范围之外。
type Notifier interface {
	SendOTP(ctx context.Context, contact, code string) error
}
