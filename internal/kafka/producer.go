package kafka

import (
	"context"
	"encoding/json"

	"eventx/internal/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
	Topics Topics
}

type Topics struct {
	TicketBooked    string
	TicketCancelled string
	TicketValidated string
	EventCreated    string
}

func NewProducer(brokers []string, topics Topics) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics}
}

// Publish writes one message to a topic.
func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Producer) publishTicket(topic string, ticket models.Ticket) error {
	msgBytes, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	return p.Publish(topic, ticket.ID, msgBytes)
}

// PublishTicketBooked streams a successful booking.
func (p *Producer) PublishTicketBooked(ticket models.Ticket) error {
	return p.publishTicket(p.Topics.TicketBooked, ticket)
}

// PublishTicketCancelled streams a cancellation.
func (p *Producer) PublishTicketCancelled(ticket models.Ticket) error {
	return p.publishTicket(p.Topics.TicketCancelled, ticket)
}

// PublishTicketValidated streams a check-in.
func (p *Producer) PublishTicketValidated(ticket models.Ticket) error {
	return p.publishTicket(p.Topics.TicketValidated, ticket)
}

// PublishEventCreated streams a newly created event.
func (p *Producer) PublishEventCreated(event models.Event) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Publish(p.Topics.EventCreated, event.ID, msgBytes)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
