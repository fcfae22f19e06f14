package driver

import "time"

// Status 司机可用性状态。
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"   // 在线可接单
	StatusUnavailable Status = "UNAVAILABLE" // 在线不接单（默认）
	StatusBusy        Status = "BUSY"        // 行程中，仅由行程引擎写入
	StatusOffline     Status = "OFFLINE"     // 离线
)

// Valid 是否为合法状态值。
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusUnavailable, StatusBusy, StatusOffline:
		return true
	}
	return false
}

// SelfReportable 司机能否自行上报该状态。BUSY 只能由行程引擎设置。
func (s Status) SelfReportable() bool {
	return s.Valid() && s != StatusBusy
}

// Availability 司机可用性，1:1 按需懒创建。
// 写入方只有两个：司机自行上报，以及行程引擎的接单/完成/取消流转。
type Availability struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	DriverID string `gorm:"uniqueIndex;size:36;not null" json:"driver_id"`
	Status   Status `gorm:"type:varchar(16);index;not null" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Rating 乘客对司机的评分。
type Rating struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	DriverID string `gorm:"index;size:36;not null" json:"driver_id"`
	RaterID  string `gorm:"index;size:36;not null" json:"rater_id"`
	RideID   string `gorm:"size:36" json:"ride_id,omitempty"`

	Score   int    `gorm:"not null" json:"score"` // 1-5
	Comment string `gorm:"size:500" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
