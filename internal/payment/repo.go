package payment

import (
	"context"
	"fmt"

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

func (r *Repo) Create(ctx context.Context, t *Transaction) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(t).Error
}

func (r *Repo) GetByReference(ctx context.Context, reference string) (*Transaction, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var t Transaction
	if err := db.Where("reference = ?", reference).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByReferenceForUpdate 在事务内按引用号加行锁，回调结算入口都走这里。
func GetByReferenceForUpdate(tx *gorm.DB, reference string) (*Transaction, error) {
	var t Transaction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reference = ?", reference).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// HistoryFilter 流水查询的可选过滤条件。
type HistoryFilter struct {
	Type   TxType
	Status TxStatus
	Limit  int
}

// ListByUser 用户支付流水，按时间倒序。
func (r *Repo) ListByUser(ctx context.Context, userID string, f HistoryFilter) ([]Transaction, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q := db.Where("user_id = ?", userID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []Transaction
	err := q.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
