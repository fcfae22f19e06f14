package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/SwiftSoko/SwiftSoko/internal/otp"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service 用户注册/登录/资料用例。
type Service struct {
	repo     *Repo
	otps     *otp.Store
	notifier otp.Notifier
	authCfg  config.AuthConfig
	log      logger.Logger
}

func NewService(repo *Repo, otps *otp.Store, notifier otp.Notifier, authCfg config.AuthConfig, log logger.Logger) *Service {
	return &Service{repo: repo, otps: otps, notifier: notifier, authCfg: authCfg, log: log}
}

// TokenResult 登录/注册返回的令牌。
type TokenResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

func (s *Service) accessTTL() time.Duration {
	hours := s.authCfg.AccessTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// RequestOTP 为未注册的联系方式签发验证码。已注册的拒绝。
func (s *Service) RequestOTP(ctx context.Context, contact string) error {
	contact = strings.TrimSpace(strings.ToLower(contact))
	if contact == "" {
		return apperr.Validation("contact required")
	}

	existing, err := s.repo.FindByContact(ctx, contact)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Validation("contact already registered")
	}

	code, err := s.otps.Issue(ctx, contact)
	if err != nil {
		return err
	}
	return s.notifier.SendOTP(ctx, contact, code)
}

// RegisterInput 注册入参。
type RegisterInput struct {
	Contact  string
	Code     string
	Password string
	Role     auth.Role // 留空默认 USER，不允许注册为 ADMIN
}

// Register 验证码校验通过后创建用户并签发令牌。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*TokenResult, error) {
	contact := strings.TrimSpace(strings.ToLower(in.Contact))
	if contact == "" || in.Code == "" {
		return nil, apperr.Validation("contact and otp code required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	role := in.Role
	if role == "" {
		role = auth.RoleUser
	}
	if role != auth.RoleUser && role != auth.RoleDriver {
		return nil, apperr.Validation("role must be USER or DRIVER")
	}

	if err := s.otps.Verify(ctx, contact, in.Code); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByContact(ctx, contact)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("contact already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		PasswordHash: string(hash),
		Role:         role,
	}
	if IsEmail(contact) {
		u.Email = contact
	} else {
		u.Phone = contact
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Infof("user registered: %s role=%s", u.ID, role)
	return s.issueToken(u)
}

// Login 邮箱或手机号 + 密码登录。
func (s *Service) Login(ctx context.Context, contact, password string) (*TokenResult, error) {
	contact = strings.TrimSpace(strings.ToLower(contact))
	if contact == "" || password == "" {
		return nil, apperr.Validation("contact and password required")
	}

	u, err := s.repo.FindByContact(ctx, contact)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Permission("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Permission("invalid credentials")
	}

	return s.issueToken(u)
}

func (s *Service) issueToken(u *User) (*TokenResult, error) {
	token, expiresAt, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.Role, s.accessTTL())
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: token, ExpiresAt: expiresAt, User: u}, nil
}

// Me 当前用户。
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	return u, err
}

// CompleteProfile 白名单合并资料字段。
func (s *Service) CompleteProfile(ctx context.Context, userID string, in ProfileUpdate) (*User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ApplyProfileUpdate(u, in) {
		if err := s.repo.Save(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// UpdateRole 管理员调整用户角色，不允许改自己。
func (s *Service) UpdateRole(ctx context.Context, adminID, userID string, role auth.Role) (*User, error) {
	if adminID == userID {
		return nil, apperr.Permission("cannot change your own role")
	}
	if role != auth.RoleUser && role != auth.RoleDriver && role != auth.RoleAdmin {
		return nil, apperr.Newf(apperr.KindValidation, "unknown role %q", role)
	}

	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.Role = role
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.log.Infof("role updated: user=%s role=%s by=%s", userID, role, adminID)
	return u, nil
}
