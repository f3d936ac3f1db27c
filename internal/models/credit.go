package models

import "time"

// Credit transaction types.
const (
	TxExchangeCompletion = "exchange_completion"
	TxAdminAdjustment    = "admin_adjustment"
)

// CreditTransaction is an append-only ledger row. AmountCent is signed
// (negative = debit). BalanceAfterCent is authoritative: balances are never
// recomputed by summing. Transfers write exactly two rows sharing one
// TransferGroupID.
type CreditTransaction struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           uint   `gorm:"index;not null"`
	AmountCent       int64  `gorm:"not null"`
	BalanceAfterCent int64  `gorm:"not null"`
	Type             string `gorm:"size:32;index;not null"`
	Reason           string `gorm:"size:255"`
	RelatedUserID    *uint  `gorm:"index"`
	ExchangeID       *uint  `gorm:"index"`
	TransferGroupID  string `gorm:"size:36;index"`
	CreatedAt        time.Time `gorm:"index"`
}
