package pricing

import (
	"context"
	"math"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/shopspring/decimal"
)

// 报价来源标记，调用方可据此审计报价路径。
const (
	SourceLocal    = "local"
	SourceExternal = "external"
)

// earthRadiusKM 地球半径（km），haversine 公式用。
const earthRadiusKM = 6371.0

// Coordinate 经纬度坐标。
type Coordinate struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// Estimate 报价结果。金额用精确小数，避免浮点累积误差。
type Estimate struct {
	Amount     decimal.Decimal `json:"amount"`
	DistanceKM float64         `json:"distance_km"`
	Source     string          `json:"source"`
}

// Params 本地计价参数，从 PricingConfig 的字符串字段解析而来。
type Params struct {
	BaseFare        decimal.Decimal
	CostPerKM       decimal.Decimal
	MinimumFare     decimal.Decimal
	SurgeMultiplier decimal.Decimal
}

// ParseParams 解析计价配置。surge 缺省为 1。
func ParseParams(cfg config.PricingConfig) (Params, error) {
	var p Params
	var err error
	if p.BaseFare, err = decimal.NewFromString(cfg.BaseFare); err != nil {
		return p, apperr.Newf(apperr.KindValidation, "invalid base fare %q", cfg.BaseFare)
	}
	if p.CostPerKM, err = decimal.NewFromString(cfg.CostPerKM); err != nil {
		return p, apperr.Newf(apperr.KindValidation, "invalid cost per km %q", cfg.CostPerKM)
	}
	if p.MinimumFare, err = decimal.NewFromString(cfg.MinimumFare); err != nil {
		return p, apperr.Newf(apperr.KindValidation, "invalid minimum fare %q", cfg.MinimumFare)
	}
	if cfg.SurgeMultiplier == "" {
		p.SurgeMultiplier = decimal.NewFromInt(1)
	} else if p.SurgeMultiplier, err = decimal.NewFromString(cfg.SurgeMultiplier); err != nil {
		return p, apperr.Newf(apperr.KindValidation, "invalid surge multiplier %q", cfg.SurgeMultiplier)
	}
	if p.SurgeMultiplier.LessThanOrEqual(decimal.Zero) {
		p.SurgeMultiplier = decimal.NewFromInt(1)
	}
	return p, nil
}

// Haversine 两点间大圆距离（km），保留两位小数。
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	d := 2 * earthRadiusKM * math.Asin(math.Sqrt(h))

	return math.Round(d*100) / 100
}

// LocalCost 本地计价：(base + d*perKM) * surge，向下不低于最低车费。
func LocalCost(p Params, distanceKM float64) decimal.Decimal {
	d := decimal.NewFromFloat(distanceKM)
	cost := p.BaseFare.Add(d.Mul(p.CostPerKM)).Mul(p.SurgeMultiplier)
	if cost.LessThan(p.MinimumFare) {
		return p.MinimumFare
	}
	return cost
}

// Estimator 报价服务：外部计价服务优先，失败时静默回退本地公式。
type Estimator struct {
	params Params
	remote remoteEstimator
	log    logger.Logger
}

// remoteEstimator 外部计价服务抽象，便于测试打桩。
type remoteEstimator interface {
	Estimate(ctx context.Context, pickup, dropoff Coordinate) (*Estimate, error)
}

// NewEstimator 创建报价服务。配置了外部服务地址时启用远端报价。
func NewEstimator(cfg config.PricingConfig, log logger.Logger) (*Estimator, error) {
	params, err := ParseParams(cfg)
	if err != nil {
		return nil, err
	}
	e := &Estimator{params: params, log: log}
	if cfg.ExternalURL != "" {
		e.remote = newExternalClient(cfg)
	}
	return e, nil
}

// Estimate 计算车费报价。
// distanceKM > 0 时直接采用调用方给定里程，否则按 haversine 计算。
// 远端失败不向调用方暴露，仅降级为本地计价并记一条 warn。
func (e *Estimator) Estimate(ctx context.Context, pickup, dropoff Coordinate, distanceKM float64) Estimate {
	if e.remote != nil {
		if est, err := e.remote.Estimate(ctx, pickup, dropoff); err == nil {
			return *est
		} else if e.log != nil {
			e.log.Warnf("external estimator unavailable, falling back to local: %v", err)
		}
	}

	if distanceKM <= 0 {
		distanceKM = Haversine(pickup, dropoff)
	}
	return Estimate{
		Amount:     LocalCost(e.params, distanceKM),
		DistanceKM: distanceKM,
		Source:     SourceLocal,
	}
}
