package driver

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

// GetOrCreateByDriver 懒创建可用性记录，默认 UNAVAILABLE。
func (r *Repo) GetOrCreateByDriver(ctx context.Context, driverID string) (*Availability, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	return getOrCreateAvailability(db, driverID)
}

// GetForUpdate 在事务内按司机加行锁取可用性，缺失时先创建。
func GetForUpdate(tx *gorm.DB, driverID string) (*Availability, error) {
	var a Availability
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("driver_id = ?", driverID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return getOrCreateAvailability(tx, driverID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func getOrCreateAvailability(db *gorm.DB, driverID string) (*Availability, error) {
	var a Availability
	err := db.Where("driver_id = ?", driverID).First(&a).Error
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	a = Availability{ID: uuid.NewString(), DriverID: driverID, Status: StatusUnavailable}
	if err := db.Create(&a).Error; err != nil {
		// 并发懒创建撞唯一索引时重读
		if readErr := db.Where("driver_id = ?", driverID).First(&a).Error; readErr == nil {
			return &a, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Save(ctx context.Context, a *Availability) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(a).Error
}

// ListAvailable 当前可接单的司机。
func (r *Repo) ListAvailable(ctx context.Context, limit int) ([]Availability, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 100
	}
	var out []Availability
	err := db.Where("status = ?", StatusAvailable).Limit(limit).Find(&out).Error
	return out, err
}

func (r *Repo) CreateRating(ctx context.Context, rating *Rating) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(rating).Error
}

// ListRatings 司机收到的评分，按时间倒序。
func (r *Repo) ListRatings(ctx context.Context, driverID string, limit int) ([]Rating, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	var out []Rating
	err := db.Where("driver_id = ?", driverID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
