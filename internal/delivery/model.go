package delivery

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusinessStatus 货运单状态枚举（持久化为字符串）。
type BusinessStatus string

const (
	BusinessAvailable BusinessStatus = "AVAILABLE" // 开放竞价
	BusinessOnHold    BusinessStatus = "ONHOLD"    // 管理性暂停
	BusinessAwarded   BusinessStatus = "AWARDED"   // 已定标
	BusinessInTransit BusinessStatus = "INTRANSIT" // 运输中
	BusinessCompleted BusinessStatus = "COMPLETED" // 已完成
)

// BidStatus 竞价状态。ACCEPTED 是新竞价的开放态。
type BidStatus string

const (
	BidAccepted  BidStatus = "ACCEPTED" // 开放中（默认）
	BidAwarded   BidStatus = "AWARDED"  // 中标，每单至多一个
	BidRejected  BidStatus = "REJECTED" // 落标
	BidCancelled BidStatus = "CANCELLED"
)

// Open 竞价是否仍在开放中。
func (s BidStatus) Open() bool { return s == BidAccepted }

// Business 货运单（接受司机竞价的配送任务，与公司实体无关）。
type Business struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	OwnerID string `gorm:"index;size:36;not null" json:"owner_id"`
	Code    string `gorm:"uniqueIndex;size:12;not null" json:"code"` // 12 位派生码

	Status         BusinessStatus  `gorm:"type:varchar(16);index;not null" json:"status"`
	Priority       string          `gorm:"size:16" json:"priority"`              // low/normal/high
	MaxWaitingTime int             `json:"max_waiting_time"`                     // 分钟
	PickupPoint    string          `gorm:"size:255;not null" json:"pickup_point"`
	DeliveryFee    decimal.Decimal `gorm:"type:decimal(12,2)" json:"delivery_fee"`

	Published   bool       `gorm:"index;not null;default:false" json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"` // 首次发布时写入，之后不再变

	Parcels []Parcel `gorm:"foreignKey:BusinessID" json:"parcels,omitempty"`
	Bids    []Bid    `gorm:"foreignKey:BusinessID" json:"bids,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Parcel 货运单下的包裹。
type Parcel struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	BusinessID string `gorm:"index;size:36;not null" json:"business_id"`

	Details      string `gorm:"size:500" json:"details"`
	DropoffPoint string `gorm:"size:255;not null" json:"dropoff_point"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Bid 司机对货运单的竞价。一个司机对同一单至多一条记录。
type Bid struct {
	ID         string `gorm:"primaryKey;size:36;" json:"id"`
	BusinessID string `gorm:"uniqueIndex:uk_business_driver;size:36;not null" json:"business_id"`
	DriverID   string `gorm:"uniqueIndex:uk_business_driver;size:36;not null" json:"driver_id"`

	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status BidStatus       `gorm:"type:varchar(16);index;not null" json:"status"`

	AwardedAt    *time.Time `json:"awarded_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `gorm:"size:255" json:"cancel_reason,omitempty"`
	CancelledBy  string     `gorm:"size:36" json:"cancelled_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
