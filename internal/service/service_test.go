package service

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/ChalithH/SkillForge/internal/database"
	"github.com/ChalithH/SkillForge/internal/models"
	"github.com/ChalithH/SkillForge/internal/notify"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens a per-test in-memory database to avoid cross-test
// interference.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// recordingNotifier captures dispatched events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) ExchangeStatusChanged(userID, exchangeID uint, status, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notify.Event{
		Type:       notify.EventExchangeStatus,
		UserID:     userID,
		ExchangeID: exchangeID,
		Status:     status,
		Reason:     reason,
	})
}

func (n *recordingNotifier) CreditsChanged(userID uint, amountCent int64, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notify.Event{
		Type:       notify.EventCredits,
		UserID:     userID,
		AmountCent: amountCent,
		Reason:     reason,
	})
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Type == eventType {
			c++
		}
	}
	return c
}

// fakePresence is a static PresenceReader for matching tests.
type fakePresence map[uint]bool

func (p fakePresence) IsUserOnline(userID uint) bool { return p[userID] }

func createUser(t *testing.T, db *gorm.DB, name string, balanceCent int64) *models.User {
	t.Helper()
	user := models.User{
		Name:              name,
		Email:             fmt.Sprintf("%s-%s@example.com", name, t.Name()),
		PasswordHash:      "x",
		CreditBalanceCent: balanceCent,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createSkill(t *testing.T, db *gorm.DB, name, category string) *models.Skill {
	t.Helper()
	skill := models.Skill{Name: name, Category: category}
	require.NoError(t, db.Create(&skill).Error)
	return &skill
}

func addUserSkill(t *testing.T, db *gorm.DB, userID, skillID uint, offering bool, proficiency int) {
	t.Helper()
	us := models.UserSkill{
		UserID:      userID,
		SkillID:     skillID,
		IsOffering:  offering,
		Proficiency: proficiency,
	}
	require.NoError(t, db.Create(&us).Error)
}

func addReview(t *testing.T, db *gorm.DB, exchangeID, reviewerID, reviewedID uint, rating int) {
	t.Helper()
	review := models.Review{
		ExchangeID: exchangeID,
		ReviewerID: reviewerID,
		ReviewedID: reviewedID,
		Rating:     rating,
	}
	require.NoError(t, db.Create(&review).Error)
}
