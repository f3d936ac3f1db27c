package models

import "time"

// Skill is a teachable subject, shared by all users.
type Skill struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:64;uniqueIndex;not null"`
	Category    string `gorm:"size:64;index;not null"`
	Description string `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserSkill links a user to a skill either as something they teach
// (IsOffering=true) or something they want to learn. At most one row exists
// per (user, skill) pair; adding the same pair again updates in place.
type UserSkill struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"uniqueIndex:idx_user_skill;not null"`
	SkillID     uint   `gorm:"uniqueIndex:idx_user_skill;not null"`
	Proficiency int    `gorm:"not null;default:1"` // 1-5
	IsOffering  bool   `gorm:"index;not null"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User  User  `gorm:"constraint:OnDelete:CASCADE"`
	Skill Skill `gorm:"constraint:OnDelete:CASCADE"`
}
