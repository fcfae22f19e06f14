package ride

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

func (r *Repo) Create(ctx context.Context, ride *Ride) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(ride).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Ride, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ride Ride
	if err := db.Where("id = ?", id).First(&ride).Error; err != nil {
		return nil, err
	}
	return &ride, nil
}

// GetForUpdate 在事务内按 ID 加行锁取行程，所有状态流转都从这里开始。
func GetForUpdate(tx *gorm.DB, id string) (*Ride, error) {
	var ride Ride
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&ride).Error; err != nil {
		return nil, err
	}
	return &ride, nil
}

// CountActiveByDriver 司机名下非终态行程数。与接单写入同事务执行，
// 防止并发接两单。
func CountActiveByDriver(tx *gorm.DB, driverID string) (int64, error) {
	var n int64
	err := tx.Model(&Ride{}).
		Where("driver_id = ? AND status IN ?", driverID, ActiveStatuses).
		Count(&n).Error
	return n, err
}

// ListPendingUnassigned 待接单行程，供司机浏览。
func (r *Repo) ListPendingUnassigned(ctx context.Context, limit int) ([]Ride, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	var out []Ride
	err := db.Where("status = ? AND (driver_id IS NULL OR driver_id = '')", StatusPending).
		Order("created_at ASC").Limit(limit).Find(&out).Error
	return out, err
}

// ListByCustomer 乘客的行程，按时间倒序。
func (r *Repo) ListByCustomer(ctx context.Context, customerID string, limit int) ([]Ride, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	var out []Ride
	err := db.Where("customer_id = ?", customerID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// ListByDriver 司机的行程，按时间倒序。
func (r *Repo) ListByDriver(ctx context.Context, driverID string, limit int) ([]Ride, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	var out []Ride
	err := db.Where("driver_id = ?", driverID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// ActiveByDriver 司机当前进行中的行程，没有则返回 nil。
func (r *Repo) ActiveByDriver(ctx context.Context, driverID string) (*Ride, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ride Ride
	err := db.Where("driver_id = ? AND status IN ?", driverID, ActiveStatuses).
		First(&ride).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}
