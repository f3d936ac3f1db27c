package models

import "time"

// ExchangeStatus is the lifecycle state of a SkillExchange.
type ExchangeStatus string

const (
	StatusPending   ExchangeStatus = "pending"
	StatusAccepted  ExchangeStatus = "accepted"
	StatusCompleted ExchangeStatus = "completed"
	StatusRejected  ExchangeStatus = "rejected"
	StatusCancelled ExchangeStatus = "cancelled"
	StatusNoShow    ExchangeStatus = "no_show"
)

// Terminal reports whether no further transition may leave this status.
func (s ExchangeStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// SkillExchange is a scheduled teaching session: the offerer teaches the
// learner. Status is mutated only through the exchange service's transition
// table; rows are never deleted.
type SkillExchange struct {
	ID            uint           `gorm:"primaryKey"`
	OffererID     uint           `gorm:"index;not null"`
	LearnerID     uint           `gorm:"index;not null"`
	SkillID       uint           `gorm:"index;not null"`
	ScheduledAt   time.Time      `gorm:"index;not null"`
	DurationHours float64        `gorm:"not null"`
	Status        ExchangeStatus `gorm:"size:16;index;not null"`
	MeetingLink   string         `gorm:"size:255"`
	Notes         string         `gorm:"size:512"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Offerer User  `gorm:"foreignKey:OffererID;constraint:OnDelete:CASCADE"`
	Learner User  `gorm:"foreignKey:LearnerID;constraint:OnDelete:CASCADE"`
	Skill   Skill `gorm:"constraint:OnDelete:CASCADE"`
}

// ExchangeStatusHistory is the append-only audit trail of an exchange. For a
// given exchange the rows ordered by creation form an unbroken chain: the
// first row has FromStatus nil, every later row's FromStatus equals the
// previous row's ToStatus.
type ExchangeStatusHistory struct {
	ID         uint            `gorm:"primaryKey"`
	ExchangeID uint            `gorm:"index;not null"`
	FromStatus *ExchangeStatus `gorm:"size:16"`
	ToStatus   ExchangeStatus  `gorm:"size:16;not null"`
	ChangedBy  uint            `gorm:"not null"`
	Reason     string          `gorm:"size:255"`
	UserAgent  string          `gorm:"size:255"`
	CreatedAt  time.Time       `gorm:"index"`
}
