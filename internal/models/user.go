package models

import "time"

// User represents a marketplace member. CreditBalanceCent is the current
// time-credit balance in credit-cents (1 credit-hour = 100 cents); only the
// credit ledger writes it, and it always matches the BalanceAfterCent of the
// user's latest CreditTransaction.
type User struct {
	ID                uint   `gorm:"primaryKey"`
	Name              string `gorm:"size:64;not null"`
	Email             string `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash      string `gorm:"size:255;not null"`
	Bio               string `gorm:"size:512"`
	ProfileImageURL   string `gorm:"size:255"`
	CreditBalanceCent int64  `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	FailedLoginAttempts int        `gorm:"default:0"`
	LockedUntil         *time.Time `gorm:"index"`
	LastLoginAt         *time.Time
}
