package driver

import (
	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"gorm.io/gorm"
)

// Guard 供行程引擎在自己的事务内翻转司机可用性。
// 这是除司机自行上报外唯一允许写 Availability 的入口。
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// MarkBusy 接单时调用：锁下校验司机当前 AVAILABLE，置为 BUSY。
func (Guard) MarkBusy(tx *gorm.DB, driverID string) error {
	a, err := GetForUpdate(tx, driverID)
	if err != nil {
		return err
	}
	if a.Status != StatusAvailable {
		return apperr.StateConflict("driver is not available")
	}
	a.Status = StatusBusy
	return tx.Save(a).Error
}

// MarkAvailable 完成或司机取消时调用：恢复为 AVAILABLE。
func (Guard) MarkAvailable(tx *gorm.DB, driverID string) error {
	a, err := GetForUpdate(tx, driverID)
	if err != nil {
		return err
	}
	a.Status = StatusAvailable
	return tx.Save(a).Error
}
