package models

import "time"

// Review is feedback left by one party of a completed exchange about the
// other. Rating is 1-5.
type Review struct {
	ID         uint   `gorm:"primaryKey"`
	ExchangeID uint   `gorm:"index;not null"`
	ReviewerID uint   `gorm:"index;not null"`
	ReviewedID uint   `gorm:"index;not null"`
	Rating     int    `gorm:"not null;default:1"`
	Comment    string `gorm:"size:512"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Exchange SkillExchange `gorm:"constraint:OnDelete:CASCADE"`
	Reviewer User          `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE"`
	Reviewed User          `gorm:"foreignKey:ReviewedID;constraint:OnDelete:CASCADE"`
}
