package extensions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Kotlang/summitGo/logger"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	LeadCreated        = "lead.created"
	EventCreated       = "event.created"
	AttendeeRegistered = "attendee.registered"
)

// Notification is the message body published for every domain event.
type Notification struct {
	Kind       string      `json:"kind"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type NotifierInterface interface {
	Notify(ctx context.Context, kind string, payload interface{}) chan error
}

// NoopNotifier is used when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(_ context.Context, _ string, _ interface{}) chan error {
	errChan := make(chan error, 1)
	errChan <- nil
	return errChan
}

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	IsClosed() bool
	Close() error
}

// NotificationClient publishes notifications to a RabbitMQ queue. The broker
// connection is opened lazily and re-opened after it drops.
type NotificationClient struct {
	url   string
	queue string

	connCreationLock sync.Mutex
	conn             connection
	channel          publisher
	dial             func() (connection, publisher, error)
}

func NewNotificationClient(url, queue string) *NotificationClient {
	c := &NotificationClient{url: url, queue: queue}
	c.dial = c.dialBroker
	return c
}

// ProvideNotifier returns a broker-backed notifier, or a no-op one when url is empty.
func ProvideNotifier(url, queue string) NotifierInterface {
	if url == "" {
		return NoopNotifier{}
	}
	return NewNotificationClient(url, queue)
}

func (c *NotificationClient) dialBroker() (connection, publisher, error) {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return nil, nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if _, err := channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, channel, nil
}

func (c *NotificationClient) getChannel() (publisher, error) {
	c.connCreationLock.Lock()
	defer c.connCreationLock.Unlock()

	if c.channel != nil && (c.conn == nil || !c.conn.IsClosed()) {
		return c.channel, nil
	}

	c.closeConnection()
	conn, channel, err := c.dial()
	if err != nil {
		logger.Error("Failed getting connection with notification broker", zap.Error(err))
		return nil, err
	}
	c.conn = conn
	c.channel = channel
	return channel, nil
}

// closeConnection drops the channel and its connection. Callers hold
// connCreationLock.
func (c *NotificationClient) closeConnection() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			logger.Debug("Failed closing notification broker connection", zap.Error(err))
		}
		c.conn = nil
	}
}

func (c *NotificationClient) resetChannel() {
	c.connCreationLock.Lock()
	defer c.connCreationLock.Unlock()
	c.closeConnection()
}

func (c *NotificationClient) Notify(ctx context.Context, kind string, payload interface{}) chan error {
	errChan := make(chan error, 1)

	go func() {
		if err := ctx.Err(); err != nil {
			errChan <- err
			return
		}

		body, err := json.Marshal(Notification{Kind: kind, OccurredAt: time.Now().UTC(), Payload: payload})
		if err != nil {
			errChan <- err
			return
		}

		channel, err := c.getChannel()
		if err != nil {
			errChan <- errors.New("failed to get connection with notification broker")
			return
		}

		err = channel.Publish("", c.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         kind,
			Timestamp:    time.Now(),
			Body:         body,
		})
		if err != nil {
			c.resetChannel()
			errChan <- err
			return
		}
		errChan <- nil
	}()

	return errChan
}

func (c *NotificationClient) Close() error {
	c.connCreationLock.Lock()
	defer c.connCreationLock.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
