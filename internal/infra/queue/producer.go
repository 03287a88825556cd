package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	NoticeLeadAccepted  = "LEAD_ACCEPTED"
	NoticeLeadCompleted = "LEAD_COMPLETED"
)

// CustomerNotice tells the consumer to reach a customer outside the app.
type CustomerNotice struct {
	Event            string    `json:"event"`
	LeadID           string    `json:"lead_id"`
	LeadTitle        string    `json:"lead_title"`
	CustomerID       string    `json:"customer_id"`
	MobileNumber     string    `json:"mobile_number"`
	FreelancerID     string    `json:"freelancer_id"`
	FreelancerUserID string    `json:"freelancer_user_id"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher is the slice of amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishCustomerNotice(ctx context.Context, notice CustomerNotice) error {
	if notice.OccurredAt.IsZero() {
		notice.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to encode notice: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    notice.LeadID + ":" + notice.Event,
			Timestamp:    notice.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}
	return nil
}
