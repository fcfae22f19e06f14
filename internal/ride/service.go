package ride

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/SwiftSoko/SwiftSoko/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AvailabilityGuard 行程引擎对司机可用性的唯一写入口。
// 实现方在调用方事务内完成检查与翻转，保证行程流转和可用性变更一起提交。
type AvailabilityGuard interface {
	MarkBusy(tx *gorm.DB, driverID string) error
	MarkAvailable(tx *gorm.DB, driverID string) error
}

// Service 行程生命周期用例。每个流转都是 行程行（+司机可用性行）上的
// 单个事务，前置条件不满足时返回具名错误且不落任何部分状态。
type Service struct {
	db        *gorm.DB
	repo      *Repo
	estimator *pricing.Estimator
	guard     AvailabilityGuard
	log       logger.Logger
}

func NewService(db *gorm.DB, repo *Repo, estimator *pricing.Estimator, guard AvailabilityGuard, log logger.Logger) *Service {
	return &Service{db: db, repo: repo, estimator: estimator, guard: guard, log: log}
}

// CreateRideInput 乘客下单入参。
type CreateRideInput struct {
	PickupAddress  string
	DropoffAddress string
	Pickup         pricing.Coordinate
	Dropoff        pricing.Coordinate
}

// CreateRide 乘客下单：落一条 PENDING 行程并附上预估价。
func (s *Service) CreateRide(ctx context.Context, customerID string, in CreateRideInput) (*Ride, error) {
	if strings.TrimSpace(in.PickupAddress) == "" || strings.TrimSpace(in.DropoffAddress) == "" {
		return nil, apperr.Validation("pickup and dropoff are required")
	}

	r := &Ride{
		ID:               uuid.NewString(),
		CustomerID:       customerID,
		Status:           StatusPending,
		PickupAddress:    strings.TrimSpace(in.PickupAddress),
		DropoffAddress:   strings.TrimSpace(in.DropoffAddress),
		PickupLatitude:   in.Pickup.Latitude,
		PickupLongitude:  in.Pickup.Longitude,
		DropoffLatitude:  in.Dropoff.Latitude,
		DropoffLongitude: in.Dropoff.Longitude,
	}

	if s.estimator != nil {
		est := s.estimator.Estimate(ctx, in.Pickup, in.Dropoff, 0)
		r.EstimatedFare = est.Amount
		r.EstimatedDistanceKM = est.DistanceKM
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.log.Infof("ride created: %s customer=%s", r.ID, customerID)
	return r, nil
}

// mutate 锁行程行后执行 fn，fn 内完成校验与修改，最后统一保存。
func (s *Service) mutate(ctx context.Context, rideID string, fn func(tx *gorm.DB, r *Ride) error) (*Ride, error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return nil, apperr.Validation("ride id required")
	}

	var out *Ride
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := GetForUpdate(tx, rideID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ride not found")
			}
			return err
		}
		if err := fn(tx, r); err != nil {
			return err
		}
		if err := tx.Save(r).Error; err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Accept 司机接单。锁内依次校验：行程仍 PENDING、司机名下无进行中行程、
// 司机当前 AVAILABLE；全部通过后指派司机并把可用性翻成 BUSY，同事务提交。
func (s *Service) Accept(ctx context.Context, rideID, driverID string, now time.Time) (*Ride, error) {
	return s.mutate(ctx, rideID, func(tx *gorm.DB, r *Ride) error {
		if r.Status != StatusPending {
			return apperr.StateConflict("ride is not pending")
		}
		if r.CustomerID == driverID {
			return apperr.Validation("cannot accept your own ride")
		}

		active, err := CountActiveByDriver(tx, driverID)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperr.StateConflict("driver already has an active ride")
		}

		if err := s.guard.MarkBusy(tx, driverID); err != nil {
			return err
		}

		r.DriverID = driverID
		return ApplyTransition(r, StatusAccepted, now)
	})
}

// assignedDriverOnly 仅限已指派司机操作。
func assignedDriverOnly(r *Ride, driverID string) error {
	if r.DriverID == "" || r.DriverID != driverID {
		return apperr.Permission("only the assigned driver may perform this action")
	}
	return nil
}

// DriverArrived 司机到达上车点。
func (s *Service) DriverArrived(ctx context.Context, rideID, driverID string, now time.Time) (*Ride, error) {
	return s.mutate(ctx, rideID, func(tx *gorm.DB, r *Ride) error {
		if err := assignedDriverOnly(r, driverID); err != nil {
			return err
		}
		if r.Status != StatusAccepted {
			return apperr.StateConflict("ride has not been accepted")
		}
		return ApplyTransition(r, StatusDriverArrived, now)
	})
}

// Start 开始行程。
func (s *Service) Start(ctx context.Context, rideID, driverID string, now time.Time) (*Ride, error) {
	return s.mutate(ctx, rideID, func(tx *gorm.DB, r *Ride) error {
		if err := assignedDriverOnly(r, driverID); err != nil {
			return err
		}
		if r.Status != StatusAccepted && r.Status != StatusDriverArrived {
			return apperr.StateConflict("ride cannot be started from its current status")
		}
		return ApplyTransition(r, StatusInProgress, now)
	})
}

// Complete 完成行程。fareOverride 非空时覆盖预估价；
// 司机可用性在同一事务内恢复为 AVAILABLE。
func (s *Service) Complete(ctx context.Context, rideID, driverID string, fareOverride *decimal.Decimal, distanceKM float64, now time.Time) (*Ride, error) {
	return s.mutate(ctx, rideID, func(tx *gorm.DB, r *Ride) error {
		if err := assignedDriverOnly(r, driverID); err != nil {
			return err
		}
		if r.Status != StatusInProgress && r.Status != StatusDriverArrived {
			return apperr.StateConflict("ride is not in progress")
		}

		if fareOverride != nil {
			if fareOverride.LessThanOrEqual(decimal.Zero) {
				return apperr.Validation("fare must be positive")
			}
			r.Fare = *fareOverride
		} else {
			r.Fare = r.EstimatedFare
		}
		if distanceKM > 0 {
			r.DistanceKM = distanceKM
		} else {
			r.DistanceKM = r.EstimatedDistanceKM
		}

		if err := s.guard.MarkAvailable(tx, driverID); err != nil {
			return err
		}
		return ApplyTransition(r, StatusCompleted, now)
	})
}

// Cancel 取消行程。乘客或已指派司机可取消，需给出原因；
// 司机取消时可用性恢复为 AVAILABLE。
func (s *Service) Cancel(ctx context.Context, rideID, actorID, reason string, now time.Time) (*Ride, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("cancel reason required")
	}

	return s.mutate(ctx, rideID, func(tx *gorm.DB, r *Ride) error {
		if r.Status.IsTerminal() {
			return apperr.StateConflict("ride is already finished")
		}

		switch actorID {
		case r.CustomerID:
			r.CancelledBy = CancelByCustomer
		case r.DriverID:
			if r.DriverID == "" {
				return apperr.Permission("not a party to this ride")
			}
			r.CancelledBy = CancelByDriver
		default:
			return apperr.Permission("not a party to this ride")
		}

		// 有司机被占用就释放，无论哪方取消
		if r.DriverID != "" {
			if err := s.guard.MarkAvailable(tx, r.DriverID); err != nil {
				return err
			}
		}

		r.CancelReason = reason
		return ApplyTransition(r, StatusCancelled, now)
	})
}

// Rate 行程结束后评价，双方均可，不改变行程状态。
func (s *Service) Rate(ctx context.Context, rideID, actorID string, rating int, review, tags string) (*Ride, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	return s.mutate(ctx, rideID, func(tx *gorm.DB, r *Ride) error {
		if r.Status != StatusCompleted {
			return apperr.StateConflict("only completed rides can be rated")
		}
		if actorID != r.CustomerID && actorID != r.DriverID {
			return apperr.Permission("not a party to this ride")
		}

		r.Rating = rating
		r.Review = strings.TrimSpace(review)
		r.RatingTags = strings.TrimSpace(tags)
		return nil
	})
}

// GetRide 查询行程，仅限当事双方和管理员（权限在 handler 层判断）。
func (s *Service) GetRide(ctx context.Context, rideID string) (*Ride, error) {
	r, err := s.repo.GetByID(ctx, rideID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ride not found")
	}
	return r, err
}

// AvailableRides 待接单行程列表，供司机浏览。
func (s *Service) AvailableRides(ctx context.Context, limit int) ([]Ride, error) {
	return s.repo.ListPendingUnassigned(ctx, limit)
}

// MyRides 当前用户的行程：司机看接过的单，乘客看下过的单。
func (s *Service) MyRides(ctx context.Context, actorID string, asDriver bool, limit int) ([]Ride, error) {
	if asDriver {
		return s.repo.ListByDriver(ctx, actorID, limit)
	}
	return s.repo.ListByCustomer(ctx, actorID, limit)
}

// ActiveRide 司机当前进行中的行程，可能为 nil。
func (s *Service) ActiveRide(ctx context.Context, driverID string) (*Ride, error) {
	return s.repo.ActiveByDriver(ctx, driverID)
}
