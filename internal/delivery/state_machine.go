package delivery

import "fmt"

// AllowTransition 定义货运单状态机的允许流转关系。
// ONHOLD 是 AVAILABLE 的管理性暂停态，可来回切换。
var AllowTransition = map[BusinessStatus][]BusinessStatus{
	BusinessAvailable: {BusinessOnHold, BusinessAwarded},
	BusinessOnHold:    {BusinessAvailable},
	BusinessAwarded:   {BusinessInTransit},
	BusinessInTransit: {BusinessCompleted},
	// 终态
	BusinessCompleted: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to BusinessStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对货运单应用状态变更。
func ApplyTransition(b *Business, to BusinessStatus) error {
	if b == nil {
		return fmt.Errorf("business is nil")
	}
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("invalid business status transition: %s -> %s", b.Status, to)
	}
	b.Status = to
	return nil
}
