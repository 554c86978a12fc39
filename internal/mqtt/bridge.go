// Package mqtt exposes a climate entity to Home Assistant over MQTT, using MQTT discovery.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/clambin/icomfort-monitor/internal/poller"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	cmdMode            = "mode"
	cmdTemperature     = "temperature"
	cmdTemperatureLow  = "temperature_low"
	cmdTemperatureHigh = "temperature_high"
	cmdFanMode         = "fan_mode"
	cmdPresetMode      = "preset_mode"
	cmdAuxHeat         = "aux_heat"
)

var ErrUnknownCommand = errors.New("unknown command")

type Config struct {
	Broker          string
	Username        string
	Password        string
	Prefix          string
	DiscoveryPrefix string
	ClientID        string
}

// Bridge publishes the state of a climate entity to MQTT and executes the commands it receives from Home Assistant.
type Bridge struct {
	poller    poller.Commander
	cfg       Config
	id        string
	logger    *slog.Logger
	newClient func(*pahomqtt.ClientOptions) pahomqtt.Client
	client    pahomqtt.Client
	lock      sync.Mutex
	last      *climate.State
}

func New(p poller.Commander, name string, cfg Config, logger *slog.Logger) *Bridge {
	if cfg.Prefix == "" {
		cfg.Prefix = "icomfort"
	}
	if cfg.DiscoveryPrefix == "" {
		cfg.DiscoveryPrefix = "homeassistant"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "icomfort-monitor"
	}
	return &Bridge{
		poller:    p,
		cfg:       cfg,
		id:        slug(name),
		logger:    logger,
		newClient: pahomqtt.NewClient,
	}
}

func (b *Bridge) Run(ctx context.Context) error {
	b.logger.Debug("started", slog.String("broker", b.cfg.Broker))
	defer b.logger.Debug("stopped")

	opts := pahomqtt.NewClientOptions().
		AddBroker(b.cfg.Broker).
		SetClientID(b.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetOrderMatters(false).
		SetWill(b.topic("availability"), "offline", 1, true).
		SetOnConnectHandler(func(client pahomqtt.Client) { b.onConnect(ctx, client) }).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			b.logger.Warn("connection lost", slog.Any("err", err))
		})
	if b.cfg.Username != "" {
		opts.SetUsername(b.cfg.Username)
		opts.SetPassword(b.cfg.Password)
	}

	b.lock.Lock()
	b.client = b.newClient(opts)
	b.lock.Unlock()

	// with ConnectRetry set, the token only completes once connected. onConnect takes care of (re)subscribing.
	token := b.client.Connect()
	select {
	case <-ctx.Done():
		b.client.Disconnect(0)
		return nil
	case <-token.Done():
	}
	if err := token.Error(); err != nil {
		b.logger.Error("failed to connect to broker", slog.Any("err", err))
	}

	ch := b.poller.Subscribe()
	defer b.poller.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			b.publish(b.topic("availability"), []byte("offline"), true).WaitTimeout(time.Second)
			b.client.Disconnect(250)
			return nil
		case update := <-ch:
			b.publishState(update.State)
		}
	}
}

func (b *Bridge) onConnect(ctx context.Context, client pahomqtt.Client) {
	b.logger.Info("connected to broker")
	b.publish(b.topic("availability"), []byte("online"), true)

	b.lock.Lock()
	last := b.last
	b.lock.Unlock()
	if last != nil {
		b.publishDiscovery(*last)
	}

	client.Subscribe(b.commandTopic("+"), 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		if err := b.handleCommand(ctx, msg.Topic(), msg.Payload()); err != nil {
			b.logger.Warn("command failed", slog.String("topic", msg.Topic()), slog.Any("err", err))
		}
	})
}

func (b *Bridge) publishState(state climate.State) {
	b.lock.Lock()
	rediscover := b.last == nil ||
		b.last.TemperatureUnit != state.TemperatureUnit ||
		b.last.MinTemp != state.MinTemp ||
		b.last.MaxTemp != state.MaxTemp
	b.last = &state
	b.lock.Unlock()

	if rediscover {
		b.publishDiscovery(state)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		b.logger.Error("failed to encode state", slog.Any("err", err))
		return
	}
	b.publish(b.topic("state"), payload, true)
}

func (b *Bridge) publishDiscovery(state climate.State) {
	for _, msg := range b.buildDiscovery(state) {
		b.publish(msg.Topic, msg.Payload, true)
	}
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) pahomqtt.Token {
	token := b.client.Publish(topic, 1, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Warn("publish timeout", slog.String("topic", topic))
		} else if err := token.Error(); err != nil {
			b.logger.Warn("publish failed", slog.String("topic", topic), slog.Any("err", err))
		}
	}()
	return token
}

func (b *Bridge) topic(name string) string {
	return b.cfg.Prefix + "/" + b.id + "/" + name
}

func (b *Bridge) commandTopic(cmd string) string {
	return b.topic(cmd) + "/set"
}

// handleCommand translates a message received on a command topic into a command on the entity.
func (b *Bridge) handleCommand(ctx context.Context, topic string, payload []byte) error {
	cmd, ok := strings.CutPrefix(topic, b.topic(""))
	if !ok || !strings.HasSuffix(cmd, "/set") {
		return fmt.Errorf("%s: %w", topic, ErrUnknownCommand)
	}
	cmd = strings.TrimSuffix(cmd, "/set")
	value := strings.TrimSpace(string(payload))

	var description string
	var command poller.Command

	switch cmd {
	case cmdMode:
		description = "set hvac mode to " + value
		command = func(ctx context.Context, e *climate.Entity) error {
			return e.SetHVACMode(ctx, climate.HVACMode(value))
		}
	case cmdFanMode:
		description = "set fan mode to " + value
		command = func(ctx context.Context, e *climate.Entity) error {
			return e.SetFanMode(ctx, climate.FanMode(value))
		}
	case cmdPresetMode:
		description = "set preset mode to " + value
		command = func(ctx context.Context, e *climate.Entity) error {
			return e.SetPresetMode(ctx, climate.Preset(value))
		}
	case cmdAuxHeat:
		switch strings.ToUpper(value) {
		case "ON":
			description = "turn aux heat on"
			command = func(ctx context.Context, e *climate.Entity) error { return e.TurnAuxHeatOn(ctx) }
		case "OFF":
			description = "turn aux heat off"
			command = func(ctx context.Context, e *climate.Entity) error { return e.TurnAuxHeatOff(ctx) }
		default:
			return fmt.Errorf("aux heat %q: %w", value, climate.ErrInvalidMode)
		}
	case cmdTemperature, cmdTemperatureLow, cmdTemperatureHigh:
		temperature, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s %q: %w", cmd, value, climate.ErrInvalidTemperature)
		}
		description = "set " + strings.ReplaceAll(cmd, "_", " ") + " to " + value
		command = func(ctx context.Context, e *climate.Entity) error {
			var req climate.TemperatureRequest
			switch cmd {
			case cmdTemperature:
				req.Temperature = &temperature
			case cmdTemperatureLow:
				req.Low, req.High = &temperature, e.TargetTemperatureHigh()
			case cmdTemperatureHigh:
				req.Low, req.High = e.TargetTemperatureLow(), &temperature
			}
			return e.SetTemperature(ctx, req)
		}
	default:
		return fmt.Errorf("%s: %w", cmd, ErrUnknownCommand)
	}

	b.logger.Info("command received", slog.String("command", description))
	if err := b.poller.Do(ctx, description, command); !errors.Is(err, poller.ErrCommandIgnored) {
		return err
	}
	return nil
}
