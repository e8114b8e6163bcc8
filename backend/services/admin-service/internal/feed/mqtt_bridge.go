package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// SourceMQTT tags updates received from MQTT telemetry.
const SourceMQTT = "mqtt"

// StatusApplier writes a reported status onto a record.
type StatusApplier func(ctx context.Context, entity, id, status string) error

// MQTTOptions configures the telemetry bridge.
type MQTTOptions struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
	// Backoff bounds the wait between connection attempts.
	Backoff Backoff
}

// StatusMessage is the payload published on {prefix}/{entity}/{id}/status.
type StatusMessage struct {
	Status string    `json:"status"`
	At     time.Time `json:"at,omitempty"`
}

// MQTTBridge applies status telemetry from chargers and stations and
// announces the change on the bus.
type MQTTBridge struct {
	opts      MQTTOptions
	client    mqtt.Client
	apply     StatusApplier
	publisher Publisher
	logger    *zap.Logger
	ctx       context.Context
}

// NewMQTTBridge builds a bridge; the broker connection is made by Run.
func NewMQTTBridge(opts MQTTOptions, apply StatusApplier, publisher Publisher, logger *zap.Logger) *MQTTBridge {
	if opts.TopicPrefix == "" {
		opts.TopicPrefix = "evadmin"
	}
	opts.TopicPrefix = strings.TrimSuffix(opts.TopicPrefix, "/")
	if opts.QoS > 2 {
		opts.QoS = 1
	}
	return &MQTTBridge{
		opts:      opts,
		apply:     apply,
		publisher: publisher,
		logger:    logger,
		ctx:       context.Background(),
	}
}

// Topic is the subscription filter.
func (b *MQTTBridge) Topic() string {
	return b.opts.TopicPrefix + "/+/+/status"
}

// Run connects and blocks until ctx is done. An unreachable broker is
// retried with backoff; once connected, paho reconnects on its own and the
// subscription is renewed on every connect.
func (b *MQTTBridge) Run(ctx context.Context) error {
	b.ctx = ctx
	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(b.opts.Broker)
	clientOpts.SetClientID(b.opts.ClientID)
	if b.opts.Username != "" {
		clientOpts.SetUsername(b.opts.Username)
	}
	if b.opts.Password != "" {
		clientOpts.SetPassword(b.opts.Password)
	}
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetCleanSession(true)
	clientOpts.SetConnectTimeout(10 * time.Second)
	clientOpts.SetOnConnectHandler(b.subscribe)
	clientOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		b.logger.Warn("mqtt connection lost", zap.Error(err))
	})

	b.client = mqtt.NewClient(clientOpts)
	return retry(ctx, b.opts.Backoff, b.logger, "mqtt broker", func(ctx context.Context) error {
		token := b.client.Connect()
		select {
		case <-token.Done():
		case <-ctx.Done():
			return nil
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("feed: connect mqtt broker %s: %w", b.opts.Broker, err)
		}
		defer b.client.Disconnect(250)
		<-ctx.Done()
		return nil
	})
}

func (b *MQTTBridge) subscribe(client mqtt.Client) {
	topic := b.Topic()
	token := client.Subscribe(topic, b.opts.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		if err := b.handleMessage(msg.Topic(), msg.Payload()); err != nil {
			b.logger.Warn("failed to handle telemetry", zap.String("topic", msg.Topic()), zap.Error(err))
		}
	})
	if token.Wait() && token.Error() != nil {
		b.logger.Error("mqtt subscribe failed", zap.String("topic", topic), zap.Error(token.Error()))
		return
	}
	b.logger.Info("mqtt telemetry bridge subscribed", zap.String("topic", topic))
}

// handleMessage applies one status message. Topic format:
// {prefix}/{entity}/{id}/status.
func (b *MQTTBridge) handleMessage(topic string, payload []byte) error {
	rest, ok := strings.CutPrefix(topic, b.opts.TopicPrefix+"/")
	if !ok {
		return fmt.Errorf("unexpected topic %q", topic)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "status" || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid topic format: %s", topic)
	}
	entity, id := parts[0], parts[1]

	var msg StatusMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	msg.Status = strings.TrimSpace(msg.Status)
	if msg.Status == "" {
		return errors.New("status is empty")
	}

	if err := b.apply(b.ctx, entity, id, msg.Status); err != nil {
		return fmt.Errorf("apply %s %s: %w", entity, id, err)
	}
	b.publisher.Publish(b.ctx, Update{Entity: entity, IDs: []string{id}, Source: SourceMQTT, At: msg.At})
	return nil
}
