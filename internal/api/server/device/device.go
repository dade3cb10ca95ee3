package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bz888/cafeteira/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var ErrUnknownCommand = errors.New("unknown command")

// Device is the coffee machine as seen by the HTTP handlers.
type Device interface {
	Send(ctx context.Context, command string) error
	State() State
	Connected() bool
	Close()
}

func validCommand(command string) error {
	if command != CommandOn && command != CommandOff {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	return nil
}

// Local is an in-process machine that obeys every command at once. It is
// used when no MQTT broker is configured.
type Local struct {
	tracker *Tracker
}

func NewLocal() *Local {
	return &Local{tracker: NewTracker()}
}

func (l *Local) Send(ctx context.Context, command string) error {
	if err := validCommand(command); err != nil {
		return err
	}
	l.tracker.ApplyCommand(command)
	return nil
}

func (l *Local) State() State {
	return l.tracker.Snapshot()
}

func (l *Local) Connected() bool {
	return true
}

func (l *Local) Close() {}

type MQTTConfig struct {
	Broker       string
	ClientID     string
	CommandTopic string
	StatusTopic  string
	// ConnectTimeout also bounds each publish. Defaults to 10s.
	ConnectTimeout time.Duration
}

// MQTT publishes commands to the machine and follows its status topic.
type MQTT struct {
	client  mqtt.Client
	tracker *Tracker
	config  MQTTConfig
	log     *logger.Logger
}

func NewMQTT(config MQTTConfig) (*MQTT, error) {
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	d := &MQTT{
		tracker: NewTracker(),
		config:  config,
		log:     logger.NewLogger("mqtt"),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(config.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(config.ConnectTimeout).
		SetOnConnectHandler(d.onConnect)
	d.client = mqtt.NewClient(opts)

	token := d.client.Connect()
	if !token.WaitTimeout(config.ConnectTimeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timed out", config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", config.Broker, err)
	}
	d.log.Info("Connected to MQTT broker ", config.Broker)
	return d, nil
}

// onConnect (re)subscribes after every connection.
func (d *MQTT) onConnect(c mqtt.Client) {
	for _, topic := range []string{d.config.CommandTopic, d.config.StatusTopic} {
		token := c.Subscribe(topic, 0, d.onMessage)
		go func(topic string) {
			token.Wait()
			if err := token.Error(); err != nil {
				d.log.Error("Failed to subscribe to ", topic, ": ", err)
				return
			}
			d.log.Info("Subscribed to ", topic)
		}(topic)
	}
}

func (d *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	d.log.Info("Message on ", msg.Topic(), ": ", string(msg.Payload()))
	if msg.Topic() != d.config.StatusTopic {
		return
	}
	if err := d.tracker.ApplyStatus(msg.Payload()); err != nil {
		d.log.Warn("Failed to apply status: ", err)
	}
}

func (d *MQTT) Send(ctx context.Context, command string) error {
	if err := validCommand(command); err != nil {
		return err
	}
	token := d.client.Publish(d.config.CommandTopic, 0, false, command)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", command, ctx.Err())
	case <-time.After(d.config.ConnectTimeout):
		return fmt.Errorf("publish %s: timed out", command)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", command, err)
	}
	d.tracker.Touch()
	return nil
}

func (d *MQTT) State() State {
	return d.tracker.Snapshot()
}

func (d *MQTT) Connected() bool {
	return d.client.IsConnected()
}

func (d *MQTT) Close() {
	d.client.Disconnect(250)
}
