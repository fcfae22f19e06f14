package wallet

import "time"

// TransferStatus 托管转账状态（持久化为字符串）。
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"   // 资金已冻结，待释放
	TransferCompleted TransferStatus = "COMPLETED" // 已释放到收款方
)

// Wallet 用户钱包，与用户 1:1。
// 金额单位：最小货币单位（分），两个余额任何时刻都不允许为负。
type Wallet struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"uniqueIndex;size:36;not null" json:"user_id"`

	ActiveBalance        int64 `gorm:"not null;default:0" json:"active_balance"`        // 可用余额
	TransactionalBalance int64 `gorm:"not null;default:0" json:"transactional_balance"` // 托管中余额

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EscrowTransfer 用户间托管转账记录。
// 创建时资金从付款方可用余额转入其托管余额，释放时从托管余额转入收款方可用余额。
type EscrowTransfer struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	FromUserID string `gorm:"index;size:36;not null" json:"from_user_id"`
	ToUserID   string `gorm:"index;size:36;not null" json:"to_user_id"`

	Amount int64          `gorm:"not null" json:"amount"`
	Status TransferStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	ScheduledReleaseDate *time.Time `json:"scheduled_release_date,omitempty"` // 为空表示可随时释放
	CompletedAt          *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
