package user

import (
	"strings"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
)

// User 用户模型。司机资料字段直接平铺在用户上，
// 资料是否完整由 IsProfileComplete 按角色判定。
type User struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Email string `gorm:"uniqueIndex;size:128" json:"email,omitempty"`
	Phone string `gorm:"uniqueIndex;size:32" json:"phone,omitempty"`

	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         auth.Role `gorm:"type:varchar(16);index;not null" json:"role"`

	Name string `gorm:"size:128" json:"name,omitempty"`

	// 司机资料
	LicenceNumber string `gorm:"size:64" json:"licence_number,omitempty"`
	DriverIDNo    string `gorm:"size:64" json:"driver_id_number,omitempty"`
	VehicleColor  string `gorm:"size:64" json:"vehicle_color,omitempty"`
	VehiclePlate  string `gorm:"size:32" json:"vehicle_plate,omitempty"`
	VehicleType   string `gorm:"size:64" json:"vehicle_type,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsProfileComplete 资料是否完整。司机要求齐全的执照/车辆信息，
// 其他角色只看姓名。这一不对称是刻意保留的产品行为。
func IsProfileComplete(u *User) bool {
	if u == nil {
		return false
	}
	if u.Role != auth.RoleDriver {
		return strings.TrimSpace(u.Name) != ""
	}
	for _, field := range []string{u.Name, u.Phone, u.LicenceNumber, u.DriverIDNo, u.VehicleColor, u.VehiclePlate, u.VehicleType} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// IsEmail 判断联系方式是邮箱还是手机号。
func IsEmail(contact string) bool {
	return strings.Contains(contact, "@")
}
