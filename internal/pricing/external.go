package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/shopspring/decimal"
)

// externalClient 调远端计价服务。任何失败都只返回 error，由 Estimator 决定降级。
type externalClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newExternalClient(cfg config.PricingConfig) *externalClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &externalClient{
		baseURL: cfg.ExternalURL,
		apiKey:  cfg.ExternalAPIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type externalRequest struct {
	PickupLatitude   float64 `json:"pickup_latitude"`
	PickupLongitude  float64 `json:"pickup_longitude"`
	DropoffLatitude  float64 `json:"dropoff_latitude"`
	DropoffLongitude float64 `json:"dropoff_longitude"`
}

// 远端返回字段存在两套命名，这里都认。
type externalResponse struct {
	Amount        *decimal.Decimal `json:"amount"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost"`
	DistanceKM    *float64         `json:"distance_km"`
	Distance      *float64         `json:"distance"`
}

func (r externalResponse) amount() *decimal.Decimal {
	if r.Amount != nil {
		return r.Amount
	}
	return r.EstimatedCost
}

func (r externalResponse) distanceKM() *float64 {
	if r.DistanceKM != nil {
		return r.DistanceKM
	}
	return r.Distance
}

func (c *externalClient) Estimate(ctx context.Context, pickup, dropoff Coordinate) (*Estimate, error) {
	body, err := json.Marshal(externalRequest{
		PickupLatitude:   pickup.Latitude,
		PickupLongitude:  pickup.Longitude,
		DropoffLatitude:  dropoff.Latitude,
		DropoffLongitude: dropoff.Longitude,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("estimator returned status %d", resp.StatusCode)
	}

	var out externalResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	// 字段缺失视同失败，走本地回退
	amount, distance := out.amount(), out.distanceKM()
	if amount == nil || distance == nil {
		return nil, fmt.Errorf("estimator response missing amount or distance")
	}

	return &Estimate{
		Amount:     *amount,
		DistanceKM: *distance,
		Source:     SourceExternal,
	}, nil
}
