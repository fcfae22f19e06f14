package user

import (
	"testing"

	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
)

func strptr(s string) *string { return &s }

func TestApplyProfileUpdateAllowList(t *testing.T) {
	u := &User{Name: "old"}

	changed := ApplyProfileUpdate(u, ProfileUpdate{
		Name:         strptr("  Jane Wanjiku  "),
		VehiclePlate: strptr("KDA 123X"),
	})
	if !changed {
		t.Fatalf("expected changed=true")
	}
	if u.Name != "Jane Wanjiku" {
		t.Fatalf("expected trimmed name, got %q", u.Name)
	}
	if u.VehiclePlate != "KDA 123X" {
		t.Fatalf("expected plate set, got %q", u.VehiclePlate)
	}

	// nil 字段不触碰
	if u.LicenceNumber != "" {
		t.Fatalf("licence must remain empty")
	}

	if ApplyProfileUpdate(u, ProfileUpdate{Name: strptr("Jane Wanjiku")}) {
		t.Fatalf("identical value must not report a change")
	}
}

func TestIsProfileCompleteAsymmetry(t *testing.T) {
	// 非司机只要有姓名
	rider := &User{Role: auth.RoleUser, Name: "Jane"}
	if !IsProfileComplete(rider) {
		t.Fatalf("rider with name should be complete")
	}
	rider.Name = ""
	if IsProfileComplete(rider) {
		t.Fatalf("rider without name should be incomplete")
	}

	// 司机要求完整执照/车辆信息
	d := &User{
		Role:  auth.RoleDriver,
		Name:  "John",
		Phone: "+254700000000",
	}
	if IsProfileComplete(d) {
		t.Fatalf("driver without licence/vehicle fields should be incomplete")
	}

	d.LicenceNumber = "DL-1"
	d.DriverIDNo = "12345678"
	d.VehicleColor = "white"
	d.VehiclePlate = "KDA 123X"
	d.VehicleType = "saloon"
	if !IsProfileComplete(d) {
		t.Fatalf("driver with all fields should be complete")
	}
}
