package driver

import (
	"context"
	"strings"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/google/uuid"
)

// Service 司机可用性与评分用例。
type Service struct {
	repo *Repo
	log  logger.Logger
}

func NewService(repo *Repo, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetAvailability 查询（懒创建）司机可用性。
func (s *Service) GetAvailability(ctx context.Context, driverID string) (*Availability, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, apperr.Validation("driver id required")
	}
	return s.repo.GetOrCreateByDriver(ctx, driverID)
}

// SetAvailability 司机自行上报状态。BUSY 不可自报，只能由行程引擎写入。
func (s *Service) SetAvailability(ctx context.Context, driverID string, status Status) (*Availability, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, apperr.Validation("driver id required")
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.KindValidation, "unknown availability status %q", status)
	}
	if !status.SelfReportable() {
		return nil, apperr.Validation("busy status is managed by the ride lifecycle")
	}

	a, err := s.repo.GetOrCreateByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusBusy {
		return nil, apperr.StateConflict("cannot change availability during an active ride")
	}

	a.Status = status
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.log.Infof("driver %s availability set to %s", driverID, status)
	return a, nil
}

// AvailableDrivers 当前可接单司机列表。
func (s *Service) AvailableDrivers(ctx context.Context, limit int) ([]Availability, error) {
	return s.repo.ListAvailable(ctx, limit)
}

// RateDriver 乘客给司机评分，分值 1-5。
func (s *Service) RateDriver(ctx context.Context, raterID, driverID, rideID string, score int, comment string) (*Rating, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, apperr.Validation("driver id required")
	}
	if driverID == raterID {
		return nil, apperr.Validation("cannot rate yourself")
	}
	if score < 1 || score > 5 {
		return nil, apperr.Validation("score must be between 1 and 5")
	}

	rating := &Rating{
		ID:       uuid.NewString(),
		DriverID: driverID,
		RaterID:  raterID,
		RideID:   strings.TrimSpace(rideID),
		Score:    score,
		Comment:  strings.TrimSpace(comment),
	}
	if err := s.repo.CreateRating(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// RatingSummary 评分列表 + 平均分。
type RatingSummary struct {
	DriverID string   `json:"driver_id"`
	Average  float64  `json:"average"`
	Count    int      `json:"count"`
	Ratings  []Rating `json:"ratings"`
}

// DriverRatings 司机评分汇总。
func (s *Service) DriverRatings(ctx context.Context, driverID string, limit int) (*RatingSummary, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, apperr.Validation("driver id required")
	}

	ratings, err := s.repo.ListRatings(ctx, driverID, limit)
	if err != nil {
		return nil, err
	}

	return &RatingSummary{
		DriverID: driverID,
		Average:  AverageScore(ratings),
		Count:    len(ratings),
		Ratings:  ratings,
	}, nil
}

// AverageScore 平均分，无评分时为 0。
func AverageScore(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum int
	for _, r := range ratings {
		sum += r.Score
	}
	return float64(sum) / float64(len(ratings))
}
