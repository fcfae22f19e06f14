package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

// GetOrCreateByUser 幂等地取出用户钱包，首次访问时落一条零余额记录。
func (r *Repo) GetOrCreateByUser(ctx context.Context, userID string) (*Wallet, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	var w Wallet
	err := db.Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	w = Wallet{ID: uuid.NewString(), UserID: userID}
	// 并发首次访问时靠 user_id 唯一索引兜底，冲突则重读
	if err := db.Create(&w).Error; err != nil {
		if readErr := db.Where("user_id = ?", userID).First(&w).Error; readErr == nil {
			return &w, nil
		}
		return nil, err
	}
	return &w, nil
}

// GetByUserForUpdate 在事务内按用户加行锁取钱包。钱包不存在时先创建再锁。
func GetByUserForUpdate(tx *gorm.DB, userID string) (*Wallet, error) {
	var w Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = Wallet{ID: uuid.NewString(), UserID: userID}
		if err := tx.Create(&w).Error; err != nil {
			return nil, err
		}
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetTransferForUpdate 在事务内按 ID 加行锁取托管转账。
func GetTransferForUpdate(tx *gorm.DB, transferID string) (*EscrowTransfer, error) {
	var t EscrowTransfer
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", transferID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransfersByUser 用户参与的托管转账（付款或收款），按时间倒序。
func (r *Repo) ListTransfersByUser(ctx context.Context, userID string, limit int) ([]EscrowTransfer, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	var out []EscrowTransfer
	err := db.Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
