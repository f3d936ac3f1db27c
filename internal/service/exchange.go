package service

import (
	"errors"
	"time"

	"github.com/ChalithH/SkillForge/internal/models"
	"github.com/ChalithH/SkillForge/internal/notify"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// actorRole restricts which party of an exchange may trigger a transition.
type actorRole int

const (
	roleOfferer actorRole = iota
	roleEither
)

// transition is one row of the legal-transition table.
type transition struct {
	from []models.ExchangeStatus
	to   models.ExchangeStatus
	role actorRole
}

// transitions maps an action to its legal source states, target state and
// permitted actor. Everything not listed here is rejected before any
// mutation, including all transitions out of terminal states.
var transitions = map[string]transition{
	"accept":   {from: []models.ExchangeStatus{models.StatusPending}, to: models.StatusAccepted, role: roleOfferer},
	"reject":   {from: []models.ExchangeStatus{models.StatusPending}, to: models.StatusRejected, role: roleOfferer},
	"cancel":   {from: []models.ExchangeStatus{models.StatusPending, models.StatusAccepted}, to: models.StatusCancelled, role: roleEither},
	"complete": {from: []models.ExchangeStatus{models.StatusAccepted}, to: models.StatusCompleted, role: roleOfferer},
	"no_show":  {from: []models.ExchangeStatus{models.StatusAccepted}, to: models.StatusNoShow, role: roleEither},
}

// Actor carries who performs a transition and the request context recorded
// in the status history.
type Actor struct {
	UserID    uint
	UserAgent string
}

// ExchangeService owns the exchange lifecycle: it validates transitions
// against the table above, appends one history row per transition and, on
// completion, transfers credits from learner to offerer in the same
// transaction.
type ExchangeService struct {
	db       *gorm.DB
	log      *logrus.Logger
	ledger   *CreditLedger
	notifier notify.Notifier
}

func NewExchangeService(db *gorm.DB, log *logrus.Logger, ledger *CreditLedger, notifier notify.Notifier) *ExchangeService {
	return &ExchangeService{db: db, log: log, ledger: ledger, notifier: notifier}
}

// creditCentsForDuration derives the completion transfer amount: 1
// credit-hour per scheduled hour, in credit-cents, rounded half-up to the
// nearest cent (= 0.01 hour).
func creditCentsForDuration(hours float64) int64 {
	return int64(hours*100 + 0.5)
}

// CreateExchange inserts a new exchange in Pending state, requested by the
// learner, and appends the creation history record.
func (s *ExchangeService) CreateExchange(learnerID, offererID, skillID uint, scheduledAt time.Time, durationHours float64, notes string, actor Actor) (*models.SkillExchange, error) {
	if learnerID == offererID {
		return nil, errInvalidArgument("cannot create an exchange with yourself")
	}
	if durationHours <= 0 {
		return nil, errInvalidArgument("duration must be positive")
	}

	var ex models.SkillExchange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("id IN ?", []uint{learnerID, offererID}).Count(&n).Error; err != nil {
			return err
		}
		if n != 2 {
			return errNotFound("one or both users not found")
		}
		if err := tx.First(&models.Skill{}, skillID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("skill not found")
			}
			return err
		}

		ex = models.SkillExchange{
			OffererID:     offererID,
			LearnerID:     learnerID,
			SkillID:       skillID,
			ScheduledAt:   scheduledAt,
			DurationHours: durationHours,
			Status:        models.StatusPending,
			Notes:         notes,
		}
		if err := tx.Create(&ex).Error; err != nil {
			return err
		}

		hist := models.ExchangeStatusHistory{
			ExchangeID: ex.ID,
			FromStatus: nil,
			ToStatus:   models.StatusPending,
			ChangedBy:  learnerID,
			Reason:     "exchange created",
			UserAgent:  actor.UserAgent,
		}
		return tx.Create(&hist).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ExchangeStatusChanged(offererID, ex.ID, string(models.StatusPending), "exchange created")
	return &ex, nil
}

// AcceptExchange moves a Pending exchange to Accepted; offerer only.
func (s *ExchangeService) AcceptExchange(exchangeID uint, actor Actor, reason string) (*models.SkillExchange, error) {
	if reason == "" {
		reason = "exchange accepted"
	}
	return s.apply(exchangeID, actor, "accept", reason, nil)
}

// RejectExchange moves a Pending exchange to Rejected (terminal); offerer only.
func (s *ExchangeService) RejectExchange(exchangeID uint, actor Actor, reason string) (*models.SkillExchange, error) {
	if reason == "" {
		reason = "exchange rejected"
	}
	return s.apply(exchangeID, actor, "reject", reason, nil)
}

// CancelExchange moves a Pending or Accepted exchange to Cancelled
// (terminal); either party may cancel and the history records who did.
func (s *ExchangeService) CancelExchange(exchangeID uint, actor Actor, reason string) (*models.SkillExchange, error) {
	if reason == "" {
		reason = "exchange cancelled"
	}
	return s.apply(exchangeID, actor, "cancel", reason, nil)
}

// MarkAsNoShow moves an Accepted exchange to NoShow (terminal); either party.
// No credits move.
func (s *ExchangeService) MarkAsNoShow(exchangeID uint, actor Actor, reason string) (*models.SkillExchange, error) {
	if reason == "" {
		reason = "marked as no-show"
	}
	return s.apply(exchangeID, actor, "no_show", reason, nil)
}

// CompleteExchange moves an Accepted exchange to Completed (terminal) and
// transfers duration-derived credits from learner to offerer. The status
// update, the history row and both ledger writes commit atomically: a failed
// transfer (e.g. insufficient credits) leaves the exchange untouched.
func (s *ExchangeService) CompleteExchange(exchangeID uint, actor Actor) (*models.SkillExchange, error) {
	var amount int64
	ex, err := s.apply(exchangeID, actor, "complete", "exchange completed, credits transferred", func(tx *gorm.DB, ex *models.SkillExchange) error {
		amount = creditCentsForDuration(ex.DurationHours)
		return s.ledger.transferTx(tx, ex.LearnerID, ex.OffererID, amount, "exchange completion", &ex.ID)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.CreditsChanged(ex.LearnerID, -amount, "exchange completion")
	s.notifier.CreditsChanged(ex.OffererID, amount, "exchange completion")
	return ex, nil
}

// apply runs one transition: load, authorize, check the table, persist the
// new status plus its history row and any coupled writes in one transaction.
func (s *ExchangeService) apply(exchangeID uint, actor Actor, action, reason string, coupled func(tx *gorm.DB, ex *models.SkillExchange) error) (*models.SkillExchange, error) {
	rule, ok := transitions[action]
	if !ok {
		return nil, errInvalidOperation("unknown action %q", action)
	}

	var result models.SkillExchange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ex models.SkillExchange
		if err := tx.First(&ex, exchangeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("exchange not found")
			}
			return err
		}

		switch rule.role {
		case roleOfferer:
			if actor.UserID != ex.OffererID {
				return errInvalidOperation("only the offerer can %s this exchange", action)
			}
		case roleEither:
			if actor.UserID != ex.OffererID && actor.UserID != ex.LearnerID {
				return errInvalidOperation("only a participant can %s this exchange", action)
			}
		}

		legal := false
		for _, st := range rule.from {
			if ex.Status == st {
				legal = true
				break
			}
		}
		if !legal {
			return errInvalidOperation("cannot move exchange from %q to %q", ex.Status, rule.to)
		}

		prev := ex.Status
		ex.Status = rule.to
		if err := tx.Save(&ex).Error; err != nil {
			return err
		}

		hist := models.ExchangeStatusHistory{
			ExchangeID: ex.ID,
			FromStatus: &prev,
			ToStatus:   rule.to,
			ChangedBy:  actor.UserID,
			Reason:     reason,
			UserAgent:  actor.UserAgent,
		}
		if err := tx.Create(&hist).Error; err != nil {
			return err
		}

		if coupled != nil {
			if err := coupled(tx, &ex); err != nil {
				return err
			}
		}

		result = ex
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"exchange_id": result.ID,
		"action":      action,
		"status":      result.Status,
		"actor":       actor.UserID,
	}).Info("exchange transition")

	s.notifier.ExchangeStatusChanged(result.OffererID, result.ID, string(result.Status), reason)
	s.notifier.ExchangeStatusChanged(result.LearnerID, result.ID, string(result.Status), reason)
	return &result, nil
}

// GetExchange returns one exchange by id.
func (s *ExchangeService) GetExchange(exchangeID uint) (*models.SkillExchange, error) {
	var ex models.SkillExchange
	if err := s.db.First(&ex, exchangeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("exchange not found")
		}
		return nil, err
	}
	return &ex, nil
}

// ListUserExchanges returns every exchange the user participates in, newest
// scheduled first. status filters when non-empty.
func (s *ExchangeService) ListUserExchanges(userID uint, status models.ExchangeStatus) ([]models.SkillExchange, error) {
	q := s.db.Where("offerer_id = ? OR learner_id = ?", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.SkillExchange
	if err := q.Order("scheduled_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetExchangeStatusHistory returns the full audit trail oldest-first.
func (s *ExchangeService) GetExchangeStatusHistory(exchangeID uint) ([]models.ExchangeStatusHistory, error) {
	var n int64
	if err := s.db.Model(&models.SkillExchange{}).Where("id = ?", exchangeID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errNotFound("exchange not found")
	}

	var rows []models.ExchangeStatusHistory
	if err := s.db.Where("exchange_id = ?", exchangeID).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
