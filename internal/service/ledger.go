package service

import (
	"errors"

	"github.com/ChalithH/SkillForge/internal/models"
	"github.com/ChalithH/SkillForge/internal/notify"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreditLedger owns per-user balances and the append-only transaction log.
// Balances are mutated only here; every mutation writes matching ledger rows
// in the same transaction.
type CreditLedger struct {
	db       *gorm.DB
	log      *logrus.Logger
	notifier notify.Notifier
}

func NewCreditLedger(db *gorm.DB, log *logrus.Logger, notifier notify.Notifier) *CreditLedger {
	return &CreditLedger{db: db, log: log, notifier: notifier}
}

// TransferCredits moves amountCent from one user to another: both balance
// updates and the debit/credit ledger pair commit as one transaction.
// exchangeID may be nil for transfers not tied to an exchange.
func (l *CreditLedger) TransferCredits(fromID, toID uint, amountCent int64, reason string, exchangeID *uint) error {
	err := l.db.Transaction(func(tx *gorm.DB) error {
		return l.transferTx(tx, fromID, toID, amountCent, reason, exchangeID)
	})
	if err != nil {
		return err
	}

	l.notifier.CreditsChanged(fromID, -amountCent, reason)
	l.notifier.CreditsChanged(toID, amountCent, reason)
	return nil
}

// transferTx performs the transfer inside an existing transaction so that
// callers (CompleteExchange) can couple it with their own writes.
func (l *CreditLedger) transferTx(tx *gorm.DB, fromID, toID uint, amountCent int64, reason string, exchangeID *uint) error {
	if fromID == toID {
		return errInvalidArgument("cannot transfer to yourself")
	}
	if amountCent <= 0 {
		return errInvalidArgument("amount must be positive")
	}

	var from, to models.User
	if err := tx.First(&from, fromID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvalidOperation("one or both users not found")
		}
		return err
	}
	if err := tx.First(&to, toID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvalidOperation("one or both users not found")
		}
		return err
	}

	if from.CreditBalanceCent < amountCent {
		return errInvalidOperation("insufficient credits")
	}

	from.CreditBalanceCent -= amountCent
	to.CreditBalanceCent += amountCent
	if err := tx.Save(&from).Error; err != nil {
		return err
	}
	if err := tx.Save(&to).Error; err != nil {
		return err
	}

	group := uuid.New().String()
	debit := models.CreditTransaction{
		UserID:           from.ID,
		AmountCent:       -amountCent,
		BalanceAfterCent: from.CreditBalanceCent,
		Type:             models.TxExchangeCompletion,
		Reason:           reason,
		RelatedUserID:    &to.ID,
		ExchangeID:       exchangeID,
		TransferGroupID:  group,
	}
	credit := models.CreditTransaction{
		UserID:           to.ID,
		AmountCent:       amountCent,
		BalanceAfterCent: to.CreditBalanceCent,
		Type:             models.TxExchangeCompletion,
		Reason:           reason,
		RelatedUserID:    &from.ID,
		ExchangeID:       exchangeID,
		TransferGroupID:  group,
	}
	if err := tx.Create(&debit).Error; err != nil {
		return err
	}
	if err := tx.Create(&credit).Error; err != nil {
		return err
	}

	l.log.WithFields(logrus.Fields{
		"from_user":   fromID,
		"to_user":     toID,
		"amount_cent": amountCent,
		"group":       group,
	}).Info("credits transferred")
	return nil
}

// AddCredits grants credits to a user as an administrative adjustment.
func (l *CreditLedger) AddCredits(userID uint, amountCent int64, reason string) error {
	if amountCent <= 0 {
		return errInvalidArgument("amount must be positive")
	}
	return l.adjust(userID, amountCent, reason)
}

// DeductCredits removes credits from a user as an administrative adjustment;
// fails if the balance would go negative.
func (l *CreditLedger) DeductCredits(userID uint, amountCent int64, reason string) error {
	if amountCent <= 0 {
		return errInvalidArgument("amount must be positive")
	}
	return l.adjust(userID, -amountCent, reason)
}

func (l *CreditLedger) adjust(userID uint, deltaCent int64, reason string) error {
	amount := deltaCent
	if amount < 0 {
		amount = -amount
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("user not found")
			}
			return err
		}

		if deltaCent < 0 && user.CreditBalanceCent < amount {
			return errInvalidOperation("insufficient credits")
		}

		user.CreditBalanceCent += deltaCent
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		row := models.CreditTransaction{
			UserID:           user.ID,
			AmountCent:       deltaCent,
			BalanceAfterCent: user.CreditBalanceCent,
			Type:             models.TxAdminAdjustment,
			Reason:           reason,
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return err
	}

	l.notifier.CreditsChanged(userID, deltaCent, reason)
	return nil
}

// GetUserCredits returns the user's balance in credit-cents. Unknown users
// read as 0; the strict existence check belongs to the write path only.
func (l *CreditLedger) GetUserCredits(userID uint) (int64, error) {
	var user models.User
	if err := l.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return user.CreditBalanceCent, nil
}

// GetUserCreditHistory returns the user's ledger rows newest-first.
// limit <= 0 means no cap.
func (l *CreditLedger) GetUserCreditHistory(userID uint, limit int) ([]models.CreditTransaction, error) {
	q := l.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.CreditTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
