package vehicle

import "time"

// 车辆字典表：颜色/品牌/车型分类/具体型号，司机资料引用其名称。
// 名称唯一，由管理员维护。

// Kind 字典类别。
type Kind string

const (
	KindColor Kind = "color"
	KindMake  Kind = "make"
	KindType  Kind = "type"
	KindModel Kind = "model"
)

// Valid 是否为已知类别。
func (k Kind) Valid() bool {
	switch k {
	case KindColor, KindMake, KindType, KindModel:
		return true
	}
	return false
}

// Color 车辆颜色。
type Color struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Make 车辆品牌。
type Make struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Type 车辆分类（saloon、boda、van 等）。
type Type struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Model 具体型号，挂在品牌下。
type Model struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	MakeName  string    `gorm:"size:64" json:"make_name,omitempty"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
