package delivery

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

// CreateBusiness 连同包裹一起落库（gorm 级联创建）。
func (r *Repo) CreateBusiness(ctx context.Context, b *Business) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(b).Error
}

func (r *Repo) GetBusiness(ctx context.Context, id string) (*Business, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var b Business
	if err := db.Preload("Parcels").Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBusinessForUpdate 在事务内按 ID 加行锁取货运单。定标走这里。
func GetBusinessForUpdate(tx *gorm.DB, id string) (*Business, error) {
	var b Business
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBidForUpdate 在事务内按 ID 加行锁取竞价。
func GetBidForUpdate(tx *gorm.DB, id string) (*Bid, error) {
	var b Bid
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// RejectSiblingBids 把同一单上除中标外的所有开放竞价置为落标。
// 与定标同事务执行。
func RejectSiblingBids(tx *gorm.DB, businessID, awardedBidID string) error {
	return tx.Model(&Bid{}).
		Where("business_id = ? AND id <> ? AND status = ?", businessID, awardedBidID, BidAccepted).
		Update("status", BidRejected).Error
}

func (r *Repo) CreateBid(ctx context.Context, b *Bid) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(b).Error
}

// HasBid 司机是否已对该单出价。
func (r *Repo) HasBid(ctx context.Context, businessID, driverID string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var n int64
	err := db.Model(&Bid{}).
		Where("business_id = ? AND driver_id = ?", businessID, driverID).
		Count(&n).Error
	return n > 0, err
}

// BusinessFilter 货运单列表过滤条件。
type BusinessFilter struct {
	Priority       string
	MaxWaitingTime int    // 分钟，0 表示不限
	MinFee         string // decimal 字符串，空表示不限
	MaxFee         string
	Limit          int
}

func applyFilter(db *gorm.DB, f BusinessFilter) *gorm.DB {
	if f.Priority != "" {
		db = db.Where("priority = ?", f.Priority)
	}
	if f.MaxWaitingTime > 0 {
		db = db.Where("max_waiting_time <= ?", f.MaxWaitingTime)
	}
	if f.MinFee != "" {
		db = db.Where("delivery_fee >= ?", f.MinFee)
	}
	if f.MaxFee != "" {
		db = db.Where("delivery_fee <= ?", f.MaxFee)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	return db.Limit(limit)
}

// ListForDriver 司机视角：开放竞价的已发布单，加上自己持有
// 开放/中标竞价的单。
func (r *Repo) ListForDriver(ctx context.Context, driverID string, f BusinessFilter) ([]Business, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var out []Business
	q := db.Preload("Parcels").
		Where("(published = ? AND status = ?) OR id IN (?)",
			true, BusinessAvailable,
			db.Session(&gorm.Session{NewDB: true}).Model(&Bid{}).
				Select("business_id").
				Where("driver_id = ? AND status IN ?", driverID, []BidStatus{BidAccepted, BidAwarded}),
		)
	err := applyFilter(q, f).Order("created_at DESC").Find(&out).Error
	return out, err
}

// ListForOwner 货主视角：仅自己的单。
func (r *Repo) ListForOwner(ctx context.Context, ownerID string, f BusinessFilter) ([]Business, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var out []Business
	q := db.Preload("Parcels").Where("owner_id = ?", ownerID)
	err := applyFilter(q, f).Order("created_at DESC").Find(&out).Error
	return out, err
}

// ListBidsByBusiness 货运单下所有竞价。
func (r *Repo) ListBidsByBusiness(ctx context.Context, businessID string) ([]Bid, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var out []Bid
	err := db.Where("business_id = ?", businessID).Order("created_at ASC").Find(&out).Error
	return out, err
}

// ListBidsByDriver 司机的所有竞价，按时间倒序。
func (r *Repo) ListBidsByDriver(ctx context.Context, driverID string, limit int) ([]Bid, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	var out []Bid
	err := db.Where("driver_id = ?", driverID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// SaveBusiness / SaveBid 整行保存。
func (r *Repo) SaveBusiness(ctx context.Context, b *Business) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(b).Error
}

func (r *Repo) SaveBid(ctx context.Context, b *Bid) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(b).Error
}
