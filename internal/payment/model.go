package payment

import "time"

// TxType 支付流水类型。
type TxType string

const (
	TypeDeposit    TxType = "DEPOSIT"
	TypeWithdrawal TxType = "WITHDRAWAL"
)

// TxStatus 支付流水状态。PENDING 创建，恰好流转一次到终态。
type TxStatus string

const (
	StatusPending   TxStatus = "PENDING"
	StatusSuccess   TxStatus = "SUCCESS"   // 充值成功终态
	StatusCompleted TxStatus = "COMPLETED" // 提现成功终态
	StatusFailed    TxStatus = "FAILED"
)

// IsTerminal 是否终态。终态流水对后续回调只做幂等空操作。
func (s TxStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusCompleted || s == StatusFailed
}

// Transaction 一次面向外部网关的资金移动（充值/提现）。
// Reference 与网关侧引用一一对应，是回调幂等的关键。
type Transaction struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"index;size:36;not null" json:"user_id"`

	Amount   int64    `gorm:"not null" json:"amount"` // 最小货币单位
	Currency string   `gorm:"size:8;not null" json:"currency"`
	Type     TxType   `gorm:"type:varchar(16);index;not null" json:"type"`
	Status   TxStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	Reference     string `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	RecipientCode string `gorm:"size:64" json:"recipient_code,omitempty"` // 提现收款人（网关侧）

	FailureReason string     `gorm:"size:255" json:"failure_reason,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
