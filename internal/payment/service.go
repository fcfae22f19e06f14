package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/SwiftSoko/SwiftSoko/internal/wallet"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 支付用例：充值、提现、回调结算。
// 网关调用一律在钱包锁外完成，余额只在拿到网关明确结果后才修改。
type Service struct {
	db       *gorm.DB
	repo     *Repo
	wallets  *wallet.Repo
	gateway  Gateway
	currency string
	log      logger.Logger
}

func NewService(db *gorm.DB, repo *Repo, wallets *wallet.Repo, gateway Gateway, currency string, log logger.Logger) *Service {
	return &Service{db: db, repo: repo, wallets: wallets, gateway: gateway, currency: currency, log: log}
}

func newReference(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// TopUp 发起充值：先拿到网关支付链接，再落 PENDING 流水。
// 钱包在此阶段不动，入账只发生在 VerifyPayment 或回调结算时。
func (s *Service) TopUp(ctx context.Context, userID, email string, amount int64) (*InitiateResult, *Transaction, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil, apperr.Validation("email required")
	}
	if err := wallet.ValidateAmount(amount); err != nil {
		return nil, nil, err
	}

	reference := newReference("dep")
	result, err := s.gateway.InitiatePayment(ctx, email, amount, reference)
	if err != nil {
		return nil, nil, err
	}

	tx := &Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Currency:  s.currency,
		Type:      TypeDeposit,
		Status:    StatusPending,
		Reference: result.Reference,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, nil, err
	}

	s.log.Infof("deposit initiated: user=%s reference=%s amount=%d", userID, tx.Reference, amount)
	return result, tx, nil
}

// VerifyPayment 同步核验充值。网关确认成功后幂等结算。
func (s *Service) VerifyPayment(ctx context.Context, reference string) (*Transaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperr.Validation("reference required")
	}

	result, err := s.gateway.VerifyPayment(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		// 未到成功终态：流水保持 PENDING，等待后续核验或回调
		tx, err := s.repo.GetByReference(ctx, reference)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("transaction not found")
		}
		return tx, err
	}

	return s.settleDeposit(ctx, reference)
}

// applyDepositSuccess 充值结算的判定与变更：终态流水是空操作（不入账、
// 不改状态），非终态才标记 SUCCESS 并执行入账。返回是否发生了结算。
func applyDepositSuccess(t *Transaction, now time.Time, credit func() error) (bool, error) {
	if t.Status.IsTerminal() {
		return false, nil
	}
	if t.Type != TypeDeposit {
		return false, apperr.StateConflict("reference does not belong to a deposit")
	}

	t.Status = StatusSuccess
	t.CompletedAt = &now
	if err := credit(); err != nil {
		return false, err
	}
	return true, nil
}

// settleDeposit 幂等的充值结算：流水状态与钱包入账在同一事务内提交，
// 重复回调在锁下发现终态后直接返回。
func (s *Service) settleDeposit(ctx context.Context, reference string) (*Transaction, error) {
	var out *Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := GetByReferenceForUpdate(tx, reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("transaction not found")
			}
			return err
		}

		settled, err := applyDepositSuccess(t, time.Now().UTC(), func() error {
			return wallet.CreditActiveTx(tx, t.UserID, t.Amount)
		})
		if err != nil {
			return err
		}
		if settled {
			if err := tx.Save(t).Error; err != nil {
				return err
			}
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Status == StatusSuccess {
		s.log.Infof("deposit settled: reference=%s user=%s amount=%d", out.Reference, out.UserID, out.Amount)
	}
	return out, nil
}

// webhookEvent 网关回调体。
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// HandleWebhook 处理网关回调。签名不合法直接拒绝且不改任何状态；
// 回调可能重复送达，结算按引用号幂等。
func (s *Service) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(rawBody, signature) {
		return apperr.Permission("webhook rejected")
	}

	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return apperr.Validation("malformed webhook body")
	}
	if event.Data.Reference == "" {
		return apperr.Validation("webhook missing reference")
	}

	switch event.Event {
	case "charge.success":
		_, err := s.settleDeposit(ctx, event.Data.Reference)
		return err
	default:
		// 其他事件仅记录，不改状态
		s.log.Infof("ignoring webhook event %q (reference=%s)", event.Event, event.Data.Reference)
		return nil
	}
}

// WithdrawInput 提现入参。
type WithdrawInput struct {
	UserID        string
	Amount        int64
	AccountName   string
	AccountNumber string
	BankCode      string
}

// Withdraw 提现协议：
//  1. 余额预检通过后落 PENDING 流水（不扣款）
//  2. 网关注册收款人
//  3. 网关发起转账
//  4. 网关明确接受后，同事务内标记 COMPLETED 并扣减钱包
//
// 2-4 任一步失败都把流水置 FAILED，钱包保持不动。
func (s *Service) Withdraw(ctx context.Context, in WithdrawInput) (*Transaction, error) {
	if err := wallet.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.AccountName) == "" || strings.TrimSpace(in.AccountNumber) == "" {
		return nil, apperr.Validation("account name and number required")
	}

	w, err := s.wallets.GetOrCreateByUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if w.ActiveBalance < in.Amount {
		return nil, apperr.InsufficientFunds("insufficient active balance")
	}

	t := &Transaction{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Amount:    in.Amount,
		Currency:  s.currency,
		Type:      TypeWithdrawal,
		Status:    StatusPending,
		Reference: newReference("wd"),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	recipientCode, err := s.gateway.CreateRecipient(ctx, in.AccountName, in.AccountNumber, in.BankCode)
	if err != nil {
		s.markFailed(ctx, t, "recipient creation failed")
		return nil, err
	}
	t.RecipientCode = recipientCode

	result, err := s.gateway.Transfer(ctx, recipientCode, in.Amount, t.Reference, "wallet withdrawal")
	if err != nil {
		s.markFailed(ctx, t, "transfer request failed")
		return nil, err
	}
	if !result.Accepted() {
		s.markFailed(ctx, t, "transfer not accepted by gateway")
		return nil, apperr.Gateway("transfer not accepted by gateway", nil)
	}

	// 网关已接受：结算并扣款。锁下余额可能已变化，不足则流水转 FAILED。
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := GetByReferenceForUpdate(tx, t.Reference)
		if err != nil {
			return err
		}
		if locked.Status.IsTerminal() {
			t = locked
			return nil
		}
		if err := wallet.DebitActiveTx(tx, t.UserID, t.Amount); err != nil {
			return err
		}
		locked.Status = StatusCompleted
		locked.RecipientCode = recipientCode
		now := time.Now().UTC()
		locked.CompletedAt = &now
		if err := tx.Save(locked).Error; err != nil {
			return err
		}
		t = locked
		return nil
	})
	if err != nil {
		s.markFailed(ctx, t, "settlement failed: "+err.Error())
		return nil, err
	}

	s.log.Infof("withdrawal completed: reference=%s user=%s amount=%d", t.Reference, t.UserID, t.Amount)
	return t, nil
}

// markFailed 把仍处于 PENDING 的流水置为 FAILED，钱包不动。
func (s *Service) markFailed(ctx context.Context, t *Transaction, reason string) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := GetByReferenceForUpdate(tx, t.Reference)
		if err != nil {
			return err
		}
		if locked.Status.IsTerminal() {
			return nil
		}
		locked.Status = StatusFailed
		locked.FailureReason = reason
		return tx.Save(locked).Error
	})
	if err != nil {
		s.log.Errorf("failed to mark transaction %s as failed: %v", t.Reference, err)
	}
}

// TransactionHistory 用户支付流水，可按类型/状态过滤。
func (s *Service) TransactionHistory(ctx context.Context, userID string, f HistoryFilter) ([]Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user id required")
	}
	if f.Type != "" && f.Type != TypeDeposit && f.Type != TypeWithdrawal {
		return nil, apperr.Validation("invalid transaction type")
	}
	return s.repo.ListByUser(ctx, userID, f)
}
