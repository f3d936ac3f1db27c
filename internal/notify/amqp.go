package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// AMQPNotifier publishes events as JSON to a RabbitMQ topic exchange so that
// external dispatchers (websocket hub, mail worker) can fan them out.
// Publishing is best-effort: errors are logged, never returned.
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *logrus.Logger
}

func NewAMQPNotifier(url, exchange string, log *logrus.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

func (n *AMQPNotifier) Close() {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}

func (n *AMQPNotifier) publish(routingKey string, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		n.log.WithError(err).Warn("marshal notify event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = n.ch.PublishWithContext(ctx, n.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   ev.At,
		Body:        body,
	})
	if err != nil {
		n.log.WithFields(logrus.Fields{
			"event":   ev.Type,
			"user_id": ev.UserID,
		}).WithError(err).Warn("publish notify event")
	}
}

func (n *AMQPNotifier) ExchangeStatusChanged(userID, exchangeID uint, status, reason string) {
	n.publish(EventExchangeStatus, Event{
		Type:       EventExchangeStatus,
		UserID:     userID,
		ExchangeID: exchangeID,
		Status:     status,
		Reason:     reason,
		At:         time.Now(),
	})
}

func (n *AMQPNotifier) CreditsChanged(userID uint, amountCent int64, reason string) {
	n.publish(EventCredits, Event{
		Type:       EventCredits,
		UserID:     userID,
		AmountCent: amountCent,
		Reason:     reason,
		At:         time.Now(),
	})
}
