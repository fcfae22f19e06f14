package wallet

import (
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
)

// 本文件是余额变更的唯一入口：所有对 Wallet 余额的修改都经过这些纯函数，
// 保证两个余额永不为负。调用方负责把变更放进同一个数据库事务。

// ValidateAmount 金额必须为正的最小货币单位整数。
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return apperr.Validation("amount must be a positive integer in minor units")
	}
	return nil
}

// DebitActive 扣减可用余额。
func DebitActive(w *Wallet, amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if w.ActiveBalance < amount {
		return apperr.InsufficientFunds("insufficient active balance")
	}
	w.ActiveBalance -= amount
	return nil
}

// CreditActive 增加可用余额。
func CreditActive(w *Wallet, amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	w.ActiveBalance += amount
	return nil
}

// HoldEscrow 把付款方资金从可用余额移入托管余额。
func HoldEscrow(from *Wallet, amount int64) error {
	if err := DebitActive(from, amount); err != nil {
		return err
	}
	from.TransactionalBalance += amount
	return nil
}

// ReleaseEscrowFunds 把付款方托管余额释放到收款方可用余额。
func ReleaseEscrowFunds(from, to *Wallet, amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if from.TransactionalBalance < amount {
		return apperr.StateConflict("escrow balance does not cover transfer")
	}
	from.TransactionalBalance -= amount
	to.ActiveBalance += amount
	return nil
}

// CanActorRelease 只有转账双方（或管理员）可以触发释放。
func CanActorRelease(t *EscrowTransfer, actorID string, isAdmin bool) error {
	if isAdmin || actorID == t.FromUserID || actorID == t.ToUserID {
		return nil
	}
	return apperr.Permission("not a party to this transfer")
}

// CanRelease 转账是否达到可释放条件。
func CanRelease(t *EscrowTransfer, now time.Time) error {
	if t.Status != TransferPending {
		return apperr.StateConflict("transfer is not pending")
	}
	if t.ScheduledReleaseDate != nil && t.ScheduledReleaseDate.After(now) {
		return apperr.StateConflict("transfer release date has not been reached")
	}
	return nil
}
