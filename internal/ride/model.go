package ride

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status 行程状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending       Status = "PENDING"        // 乘客已下单，待司机接单
	StatusAccepted      Status = "ACCEPTED"       // 司机已接单
	StatusDriverArrived Status = "DRIVER_ARRIVED" // 司机已到达上车点
	StatusInProgress    Status = "IN_PROGRESS"    // 行程进行中
	StatusCompleted     Status = "COMPLETED"      // 已完成
	StatusCancelled     Status = "CANCELLED"      // 已取消（乘客/司机）
)

// ActiveStatuses 非终态集合，用于“司机同时只能有一个进行中行程”的检查。
var ActiveStatuses = []Status{StatusPending, StatusAccepted, StatusDriverArrived, StatusInProgress}

// IsTerminal 是否终态。
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CancelActor 取消行程的一方。
type CancelActor string

const (
	CancelByCustomer CancelActor = "CUSTOMER"
	CancelByDriver   CancelActor = "DRIVER"
)

// Ride 行程 GORM 模型。
// 金额为主货币单位的精确小数；坐标为 WGS84 经纬度。
type Ride struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	CustomerID string `gorm:"index;size:36;not null" json:"customer_id"`
	DriverID   string `gorm:"index;size:36" json:"driver_id,omitempty"` // 接单后写入

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`

	PickupAddress    string  `gorm:"size:255;not null" json:"pickup_address"`
	DropoffAddress   string  `gorm:"size:255;not null" json:"dropoff_address"`
	PickupLatitude   float64 `gorm:"not null" json:"pickup_latitude"`
	PickupLongitude  float64 `gorm:"not null" json:"pickup_longitude"`
	DropoffLatitude  float64 `gorm:"not null" json:"dropoff_latitude"`
	DropoffLongitude float64 `gorm:"not null" json:"dropoff_longitude"`

	EstimatedFare       decimal.Decimal `gorm:"type:decimal(12,2)" json:"estimated_fare"`
	Fare                decimal.Decimal `gorm:"type:decimal(12,2)" json:"fare"` // 完成时写入，可被司机覆盖
	EstimatedDistanceKM float64         `json:"estimated_distance_km"`
	DistanceKM          float64         `json:"distance_km"`

	CancelledBy  CancelActor `gorm:"type:varchar(16)" json:"cancelled_by,omitempty"`
	CancelReason string      `gorm:"size:255" json:"cancel_reason,omitempty"`

	// 完成后评价，不影响状态
	Rating     int    `json:"rating,omitempty"`
	Review     string `gorm:"size:500" json:"review,omitempty"`
	RatingTags string `gorm:"size:255" json:"rating_tags,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	ArrivedAt   *time.Time `json:"arrived_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}
