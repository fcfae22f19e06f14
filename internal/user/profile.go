package user

import "strings"

// ProfileUpdate 资料补全入参。nil 字段表示不修改。
// 这是一个显式白名单：只有这里列出的字段能被外部请求写入。
type ProfileUpdate struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	LicenceNumber *string `json:"licence_number"`
	DriverIDNo    *string `json:"driver_id_number"`
	VehicleColor  *string `json:"vehicle_color"`
	VehiclePlate  *string `json:"vehicle_plate"`
	VehicleType   *string `json:"vehicle_type"`
}

// ApplyProfileUpdate 把白名单字段合并进用户，返回是否有实际变更。
func ApplyProfileUpdate(u *User, in ProfileUpdate) bool {
	changed := false
	set := func(dst *string, src *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if *dst != v {
			*dst = v
			changed = true
		}
	}

	set(&u.Name, in.Name)
	set(&u.Phone, in.Phone)
	set(&u.LicenceNumber, in.LicenceNumber)
	set(&u.DriverIDNo, in.DriverIDNo)
	set(&u.VehicleColor, in.VehicleColor)
	set(&u.VehiclePlate, in.VehiclePlate)
	set(&u.VehicleType, in.VehicleType)
	return changed
}
