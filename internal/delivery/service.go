package delivery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// codeRetries 撞码重试上限。12 位十六进制撞码概率极低，3 次足够。
const codeRetries = 3

// store 是 Service 依赖的持久化面。*Repo 是生产实现。
type store interface {
	CreateBusiness(ctx context.Context, b *Business) error
	GetBusiness(ctx context.Context, id string) (*Business, error)
	SaveBusiness(ctx context.Context, b *Business) error
	CreateBid(ctx context.Context, b *Bid) error
	HasBid(ctx context.Context, businessID, driverID string) (bool, error)
	ListForDriver(ctx context.Context, driverID string, f BusinessFilter) ([]Business, error)
	ListForOwner(ctx context.Context, ownerID string, f BusinessFilter) ([]Business, error)
	ListBidsByBusiness(ctx context.Context, businessID string) ([]Bid, error)
	ListBidsByDriver(ctx context.Context, driverID string, limit int) ([]Bid, error)
}

// Service 货运单与竞价用例。
type Service struct {
	db   *gorm.DB
	repo store
	log  logger.Logger
}

func NewService(db *gorm.DB, repo store, log logger.Logger) *Service {
	return &Service{db: db, repo: repo, log: log}
}

// ParcelInput 包裹入参。
type ParcelInput struct {
	Details      string `json:"details"`
	DropoffPoint string `json:"dropoff_point" binding:"required"`
}

// CreateBusinessInput 创建货运单入参。
type CreateBusinessInput struct {
	Priority       string          `json:"priority"`
	MaxWaitingTime int             `json:"max_waiting_time"`
	PickupPoint    string          `json:"pickup_point" binding:"required"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee" binding:"required"`
	Publish        bool            `json:"publish"`
	Parcels        []ParcelInput   `json:"parcels"`
}

// CreateBusiness 创建货运单，编码冲突时换码重试。
func (s *Service) CreateBusiness(ctx context.Context, ownerID string, in CreateBusinessInput) (*Business, error) {
	if strings.TrimSpace(in.PickupPoint) == "" {
		return nil, apperr.Validation("pickup point required")
	}
	if in.DeliveryFee.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("delivery fee must be positive")
	}

	b := &Business{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Status:         BusinessAvailable,
		Priority:       strings.TrimSpace(in.Priority),
		MaxWaitingTime: in.MaxWaitingTime,
		PickupPoint:    strings.TrimSpace(in.PickupPoint),
		DeliveryFee:    in.DeliveryFee,
		Published:      in.Publish,
	}
	if in.Publish {
		now := time.Now().UTC()
		b.PublishedAt = &now
	}
	for _, p := range in.Parcels {
		if strings.TrimSpace(p.DropoffPoint) == "" {
			return nil, apperr.Validation("parcel dropoff point required")
		}
		b.Parcels = append(b.Parcels, Parcel{
			ID:           uuid.NewString(),
			BusinessID:   b.ID,
			Details:      strings.TrimSpace(p.Details),
			DropoffPoint: strings.TrimSpace(p.DropoffPoint),
		})
	}

	var err error
	for i := 0; i < codeRetries; i++ {
		b.Code = GenerateCode(ownerID)
		if err = s.repo.CreateBusiness(ctx, b); err == nil {
			s.log.Infof("business created: %s code=%s owner=%s", b.ID, b.Code, ownerID)
			return b, nil
		}
	}
	return nil, err
}

// SetPublished 发布/下架货运单。发布时间只在首次发布写入。
func (s *Service) SetPublished(ctx context.Context, actorID string, isAdmin bool, businessID string, published bool) (*Business, error) {
	b, err := s.getOwned(ctx, actorID, isAdmin, businessID)
	if err != nil {
		return nil, err
	}

	b.Published = published
	if published && b.PublishedAt == nil {
		now := time.Now().UTC()
		b.PublishedAt = &now
	}
	if err := s.repo.SaveBusiness(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBusinessStatus 按状态机推进货运单状态，仅货主或管理员。
func (s *Service) UpdateBusinessStatus(ctx context.Context, actorID string, isAdmin bool, businessID string, to BusinessStatus) (*Business, error) {
	b, err := s.getOwned(ctx, actorID, isAdmin, businessID)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(b, to); err != nil {
		return nil, apperr.StateConflict(err.Error())
	}
	if err := s.repo.SaveBusiness(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) getOwned(ctx context.Context, actorID string, isAdmin bool, businessID string) (*Business, error) {
	b, err := s.repo.GetBusiness(ctx, businessID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("business not found")
	}
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.OwnerID != actorID {
		return nil, apperr.Permission("only the business owner may do this")
	}
	return b, nil
}

// PlaceBid 司机出价。同一司机对同一单只能有一条竞价。
func (s *Service) PlaceBid(ctx context.Context, driverID, businessID string, amount decimal.Decimal) (*Bid, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("bid amount must be positive")
	}

	b, err := s.repo.GetBusiness(ctx, businessID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("business not found")
	}
	if err != nil {
		return nil, err
	}
	if b.OwnerID == driverID {
		return nil, apperr.Validation("cannot bid on your own business")
	}
	if b.Status != BusinessAvailable {
		return nil, apperr.StateConflict("business is not open for bidding")
	}

	if exists, err := s.repo.HasBid(ctx, businessID, driverID); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.DuplicateBid("driver already holds a bid on this business")
	}

	bid := &Bid{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		DriverID:   driverID,
		Amount:     amount,
		Status:     BidAccepted,
	}
	if err := s.repo.CreateBid(ctx, bid); err != nil {
		// 并发重复出价撞唯一索引
		if exists, checkErr := s.repo.HasBid(ctx, businessID, driverID); checkErr == nil && exists {
			return nil, apperr.DuplicateBid("driver already holds a bid on this business")
		}
		return nil, err
	}

	s.log.Infof("bid placed: %s business=%s driver=%s", bid.ID, businessID, driverID)
	return bid, nil
}

// AwardBid 定标：锁货运单后，中标竞价置 AWARDED、其余开放竞价全部置
// REJECTED、货运单推进到 AWARDED，三处变更同事务提交。
// 并发二次定标会在锁下发现货运单已非 AVAILABLE 而失败。
func (s *Service) AwardBid(ctx context.Context, ownerID, bidID string, now time.Time) (*Bid, error) {
	var out *Bid
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bid, err := GetBidForUpdate(tx, bidID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bid not found")
			}
			return err
		}

		business, err := GetBusinessForUpdate(tx, bid.BusinessID)
		if err != nil {
			return err
		}
		if business.OwnerID != ownerID {
			return apperr.Permission("only the business owner may award a bid")
		}
		if business.Status != BusinessAvailable {
			return apperr.StateConflict("business has already been awarded")
		}
		if !bid.Status.Open() {
			return apperr.StateConflict("bid is not open")
		}

		bid.Status = BidAwarded
		t := now
		bid.AwardedAt = &t
		if err := tx.Save(bid).Error; err != nil {
			return err
		}

		if err := RejectSiblingBids(tx, business.ID, bid.ID); err != nil {
			return err
		}

		if err := ApplyTransition(business, BusinessAwarded); err != nil {
			return apperr.StateConflict(err.Error())
		}
		if err := tx.Save(business).Error; err != nil {
			return err
		}

		out = bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("bid awarded: %s business=%s", out.ID, out.BusinessID)
	return out, nil
}

// CancelBid 司机撤回自己的竞价，必须给出原因。
func (s *Service) CancelBid(ctx context.Context, driverID, bidID, reason string, now time.Time) (*Bid, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("cancel reason required")
	}

	var out *Bid
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bid, err := GetBidForUpdate(tx, bidID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bid not found")
			}
			return err
		}
		if bid.DriverID != driverID {
			return apperr.Permission("only the bidding driver may cancel")
		}
		if !bid.Status.Open() {
			return apperr.StateConflict("bid is not open")
		}

		bid.Status = BidCancelled
		t := now
		bid.CancelledAt = &t
		bid.CancelReason = reason
		bid.CancelledBy = driverID
		if err := tx.Save(bid).Error; err != nil {
			return err
		}
		out = bid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetBusiness 查询货运单详情。
func (s *Service) GetBusiness(ctx context.Context, businessID string) (*Business, error) {
	b, err := s.repo.GetBusiness(ctx, businessID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("business not found")
	}
	return b, err
}

// ListBusinesses 按角色过滤的货运单列表：
// 司机看开放竞价的已发布单（含自己有开放/中标竞价的单），货主看自己的单。
func (s *Service) ListBusinesses(ctx context.Context, actorID string, asDriver bool, f BusinessFilter) ([]Business, error) {
	if asDriver {
		return s.repo.ListForDriver(ctx, actorID, f)
	}
	return s.repo.ListForOwner(ctx, actorID, f)
}

// MyBids 司机自己的竞价。
func (s *Service) MyBids(ctx context.Context, driverID string, limit int) ([]Bid, error) {
	return s.repo.ListBidsByDriver(ctx, driverID, limit)
}

// BusinessBids 货运单下所有竞价，仅货主或管理员可看。
func (s *Service) BusinessBids(ctx context.Context, actorID string, isAdmin bool, businessID string) ([]Bid, error) {
	if _, err := s.getOwned(ctx, actorID, isAdmin, businessID); err != nil {
		return nil, err
	}
	return s.repo.ListBidsByBusiness(ctx, businessID)
}
