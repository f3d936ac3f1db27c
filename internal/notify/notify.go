package notify

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Event is the payload handed to external dispatchers (websocket hub,
// mail, message broker). The core only produces these; delivery is
// best-effort and never affects a core transaction.
type Event struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	ExchangeID uint      `json:"exchange_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	AmountCent int64     `json:"amount_cent,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}

const (
	EventExchangeStatus = "exchange.status_changed"
	EventCredits        = "credits.changed"
)

// Notifier announces core events to the outside world. Implementations must
// swallow delivery failures (log and continue).
type Notifier interface {
	ExchangeStatusChanged(userID, exchangeID uint, status, reason string)
	CreditsChanged(userID uint, amountCent int64, reason string)
}

// LogNotifier writes events to the application log. It is the default
// dispatcher and the fallback when no broker is configured.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) ExchangeStatusChanged(userID, exchangeID uint, status, reason string) {
	n.log.WithFields(logrus.Fields{
		"event":       EventExchangeStatus,
		"user_id":     userID,
		"exchange_id": exchangeID,
		"status":      status,
		"reason":      reason,
	}).Info("notify")
}

func (n *LogNotifier) CreditsChanged(userID uint, amountCent int64, reason string) {
	n.log.WithFields(logrus.Fields{
		"event":       EventCredits,
		"user_id":     userID,
		"amount_cent": amountCent,
		"reason":      reason,
	}).Info("notify")
}
