package pricing

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/shopspring/decimal"
)

func testParams(t *testing.T) Params {
	t.Helper()
	p, err := ParseParams(config.PricingConfig{
		BaseFare:    "150",
		CostPerKM:   "60",
		MinimumFare: "200",
	})
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	return p
}

func TestHaversineSamePointIsZero(t *testing.T) {
	p := Coordinate{Latitude: -1.2864, Longitude: 36.8172}
	if d := Haversine(p, p); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// 内罗毕 CBD -> Westlands，约 3.2km
	cbd := Coordinate{Latitude: -1.2864, Longitude: 36.8172}
	westlands := Coordinate{Latitude: -1.2672, Longitude: 36.8030}

	d := Haversine(cbd, westlands)
	if d < 2.5 || d > 4.0 {
		t.Fatalf("unexpected distance %vkm", d)
	}
	// 结果保留两位小数
	if d != math.Round(d*100)/100 {
		t.Fatalf("distance not rounded to 2dp: %v", d)
	}
}

func TestLocalCostFormula(t *testing.T) {
	p := testParams(t)

	// 5km: 150 + 5*60 = 450
	got := LocalCost(p, 5)
	if !got.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("expected 450, got %s", got)
	}
}

func TestLocalCostFlooredAtMinimumFare(t *testing.T) {
	p := testParams(t)

	// 0.5km: 150 + 30 = 180 < 最低车费 200
	got := LocalCost(p, 0.5)
	if !got.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected minimum fare 200, got %s", got)
	}
}

func TestLocalCostSurgeMultiplier(t *testing.T) {
	p := testParams(t)
	p.SurgeMultiplier = decimal.NewFromFloat(1.5)

	// (150 + 2*60) * 1.5 = 405
	got := LocalCost(p, 2)
	if !got.Equal(decimal.NewFromInt(405)) {
		t.Fatalf("expected 405, got %s", got)
	}
}

func TestParseParamsSurgeDefaultsToOne(t *testing.T) {
	p := testParams(t)
	if !p.SurgeMultiplier.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected surge default 1, got %s", p.SurgeMultiplier)
	}
}

type failingRemote struct{}

func (failingRemote) Estimate(ctx context.Context, pickup, dropoff Coordinate) (*Estimate, error) {
	return nil, fmt.Errorf("remote down")
}

func TestEstimateFallsBackToLocalOnRemoteFailure(t *testing.T) {
	e := &Estimator{params: testParams(t), remote: failingRemote{}}

	est := e.Estimate(context.Background(), Coordinate{Latitude: -1.2864, Longitude: 36.8172}, Coordinate{Latitude: -1.2672, Longitude: 36.8030}, 0)
	if est.Source != SourceLocal {
		t.Fatalf("expected local fallback, got source %q", est.Source)
	}
	if est.Amount.LessThan(decimal.NewFromInt(200)) {
		t.Fatalf("amount below minimum fare: %s", est.Amount)
	}
}

type fixedRemote struct {
	est Estimate
}

func (f fixedRemote) Estimate(ctx context.Context, pickup, dropoff Coordinate) (*Estimate, error) {
	return &f.est, nil
}

func TestEstimatePrefersRemote(t *testing.T) {
	want := Estimate{Amount: decimal.NewFromInt(999), DistanceKM: 7.5, Source: SourceExternal}
	e := &Estimator{params: testParams(t), remote: fixedRemote{est: want}}

	got := e.Estimate(context.Background(), Coordinate{}, Coordinate{}, 0)
	if got.Source != SourceExternal || !got.Amount.Equal(want.Amount) {
		t.Fatalf("expected remote estimate, got %+v", got)
	}
}

func TestEstimateUsesCallerDistance(t *testing.T) {
	e := &Estimator{params: testParams(t)}

	got := e.Estimate(context.Background(), Coordinate{}, Coordinate{}, 10)
	if got.DistanceKM != 10 {
		t.Fatalf("expected caller distance 10, got %v", got.DistanceKM)
	}
	// 150 + 10*60 = 750
	if !got.Amount.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("expected 750, got %s", got.Amount)
	}
}
