package service

import (
	"errors"
	"strings"

	"github.com/ChalithH/SkillForge/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SkillService manages the skill catalogue, per-user skill links and
// reviews.
type SkillService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewSkillService(db *gorm.DB, log *logrus.Logger) *SkillService {
	return &SkillService{db: db, log: log}
}

// CreateSkill adds a skill to the shared catalogue. Names are unique
// case-insensitively.
func (s *SkillService) CreateSkill(name, category, description string) (*models.Skill, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" {
		return nil, errInvalidArgument("skill name is required")
	}
	if category == "" {
		return nil, errInvalidArgument("skill category is required")
	}

	var n int64
	if err := s.db.Model(&models.Skill{}).Where("LOWER(name) = LOWER(?)", name).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, errConflict("skill %q already exists", name)
	}

	skill := models.Skill{Name: name, Category: category, Description: description}
	if err := s.db.Create(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

// ListSkills returns the catalogue, optionally filtered by category,
// ordered by name.
func (s *SkillService) ListSkills(category string) ([]models.Skill, error) {
	q := s.db.Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var skills []models.Skill
	if err := q.Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

// AddUserSkill links a skill to a user. A second add for the same
// (user, skill) pair updates the existing row in place rather than erroring
// or inserting a duplicate.
func (s *SkillService) AddUserSkill(userID, skillID uint, proficiency int, isOffering bool, description string) (*models.UserSkill, error) {
	if proficiency == 0 {
		proficiency = 1
	}
	if proficiency < 1 || proficiency > 5 {
		return nil, errInvalidArgument("proficiency must be between 1 and 5")
	}

	var us models.UserSkill
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.User{}, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("user not found")
			}
			return err
		}
		if err := tx.First(&models.Skill{}, skillID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("skill not found")
			}
			return err
		}

		err := tx.Where("user_id = ? AND skill_id = ?", userID, skillID).First(&us).Error
		switch {
		case err == nil:
			us.Proficiency = proficiency
			us.IsOffering = isOffering
			us.Description = description
			return tx.Save(&us).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			us = models.UserSkill{
				UserID:      userID,
				SkillID:     skillID,
				Proficiency: proficiency,
				IsOffering:  isOffering,
				Description: description,
			}
			return tx.Create(&us).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &us, nil
}

// ListUserSkills returns a user's skill links with the skill preloaded.
func (s *SkillService) ListUserSkills(userID uint) ([]models.UserSkill, error) {
	var out []models.UserSkill
	err := s.db.Preload("Skill").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveUserSkill deletes the (user, skill) link if present.
func (s *SkillService) RemoveUserSkill(userID, skillID uint) error {
	res := s.db.Where("user_id = ? AND skill_id = ?", userID, skillID).Delete(&models.UserSkill{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotFound("user skill not found")
	}
	return nil
}

// CreateReview records feedback for a completed exchange. The reviewer must
// be a participant; the reviewed user is the other party. One review per
// reviewer per exchange.
func (s *SkillService) CreateReview(exchangeID, reviewerID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, errInvalidArgument("rating must be between 1 and 5")
	}

	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ex models.SkillExchange
		if err := tx.First(&ex, exchangeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("exchange not found")
			}
			return err
		}
		if ex.Status != models.StatusCompleted {
			return errInvalidOperation("exchange is not completed")
		}

		var reviewedID uint
		switch reviewerID {
		case ex.OffererID:
			reviewedID = ex.LearnerID
		case ex.LearnerID:
			reviewedID = ex.OffererID
		default:
			return errInvalidOperation("only a participant can review this exchange")
		}

		var n int64
		if err := tx.Model(&models.Review{}).
			Where("exchange_id = ? AND reviewer_id = ?", exchangeID, reviewerID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errConflict("exchange already reviewed")
		}

		review = models.Review{
			ExchangeID: exchangeID,
			ReviewerID: reviewerID,
			ReviewedID: reviewedID,
			Rating:     rating,
			Comment:    comment,
		}
		return tx.Create(&review).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetUserReviews returns reviews received by a user, newest first.
func (s *SkillService) GetUserReviews(userID uint) ([]models.Review, error) {
	var out []models.Review
	err := s.db.Where("reviewed_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
