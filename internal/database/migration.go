package database

import (
	"fmt"

	"github.com/ChalithH/SkillForge/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Skill{},
		&models.UserSkill{},
		&models.SkillExchange{},
		&models.ExchangeStatusHistory{},
		&models.CreditTransaction{},
		&models.Review{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
