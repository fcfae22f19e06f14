package wallet

import (
	"context"
	"strings"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 钱包与托管转账用例。所有余额修改都包在数据库事务 + 行锁里，
// 同一钱包上的并发操作被串行化，不会出现丢失更新。
type Service struct {
	db   *gorm.DB
	repo *Repo
	log  logger.Logger
}

func NewService(db *gorm.DB, repo *Repo, log logger.Logger) *Service {
	return &Service{db: db, repo: repo, log: log}
}

// GetOrCreateWallet 幂等获取用户钱包。
func (s *Service) GetOrCreateWallet(ctx context.Context, userID string) (*Wallet, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id required")
	}
	return s.repo.GetOrCreateByUser(ctx, userID)
}

// CreateEscrowTransfer 发起托管转账：冻结付款方资金并落一条 PENDING 记录。
func (s *Service) CreateEscrowTransfer(ctx context.Context, fromUserID, toUserID string, amount int64, scheduledRelease *time.Time) (*EscrowTransfer, error) {
	fromUserID = strings.TrimSpace(fromUserID)
	toUserID = strings.TrimSpace(toUserID)
	if fromUserID == "" || toUserID == "" {
		return nil, apperr.Validation("both payer and payee are required")
	}
	if fromUserID == toUserID {
		return nil, apperr.Validation("cannot transfer to yourself")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	transfer := &EscrowTransfer{
		ID:                   uuid.NewString(),
		FromUserID:           fromUserID,
		ToUserID:             toUserID,
		Amount:               amount,
		Status:               TransferPending,
		ScheduledReleaseDate: scheduledRelease,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from, err := GetByUserForUpdate(tx, fromUserID)
		if err != nil {
			return err
		}
		if err := HoldEscrow(from, amount); err != nil {
			return err
		}
		if err := tx.Save(from).Error; err != nil {
			return err
		}
		return tx.Create(transfer).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"transfer_id": transfer.ID,
		"from":        fromUserID,
		"to":          toUserID,
		"amount":      amount,
	}).Info("escrow transfer created")
	return transfer, nil
}

// ReleaseEscrow 释放托管转账：三处变更（两个余额 + 转账状态）同事务提交。
// 只有转账双方（或管理员）可以触发释放。
func (s *Service) ReleaseEscrow(ctx context.Context, actorID string, isAdmin bool, transferID string, now time.Time) (*EscrowTransfer, error) {
	transferID = strings.TrimSpace(transferID)
	if transferID == "" {
		return nil, apperr.Validation("transfer id required")
	}

	var out *EscrowTransfer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transfer, err := GetTransferForUpdate(tx, transferID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("transfer not found")
			}
			return err
		}
		if err := CanActorRelease(transfer, actorID, isAdmin); err != nil {
			return err
		}
		if err := CanRelease(transfer, now); err != nil {
			return err
		}

		// 两个钱包按 user id 排序取锁，交叉释放也不会死锁
		first, second := transfer.FromUserID, transfer.ToUserID
		if second < first {
			first, second = second, first
		}
		locked := make(map[string]*Wallet, 2)
		for _, id := range []string{first, second} {
			w, err := GetByUserForUpdate(tx, id)
			if err != nil {
				return err
			}
			locked[id] = w
		}
		from, to := locked[transfer.FromUserID], locked[transfer.ToUserID]

		if err := ReleaseEscrowFunds(from, to, transfer.Amount); err != nil {
			return err
		}

		transfer.Status = TransferCompleted
		t := now
		transfer.CompletedAt = &t

		if err := tx.Save(from).Error; err != nil {
			return err
		}
		if err := tx.Save(to).Error; err != nil {
			return err
		}
		if err := tx.Save(transfer).Error; err != nil {
			return err
		}
		out = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("escrow transfer released: %s", transferID)
	return out, nil
}

// ListTransfers 用户参与的托管转账流水。
func (s *Service) ListTransfers(ctx context.Context, userID string, limit int) ([]EscrowTransfer, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user id required")
	}
	return s.repo.ListTransfersByUser(ctx, userID, limit)
}

// CreditActiveTx 在调用方事务内给用户可用余额入账。
// 供支付结算使用：只有支付流水到达成功终态后才会走到这里。
func CreditActiveTx(tx *gorm.DB, userID string, amount int64) error {
	w, err := GetByUserForUpdate(tx, userID)
	if err != nil {
		return err
	}
	if err := CreditActive(w, amount); err != nil {
		return err
	}
	return tx.Save(w).Error
}

// DebitActiveTx 在调用方事务内扣减用户可用余额。
func DebitActiveTx(tx *gorm.DB, userID string, amount int64) error {
	w, err := GetByUserForUpdate(tx, userID)
	if err != nil {
		return err
	}
	if err := DebitActive(w, amount); err != nil {
		return err
	}
	return tx.Save(w).Error
}
