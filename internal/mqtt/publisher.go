package mqtt

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/berfenger/pac2mqtt/internal/events"
	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"

	"go.uber.org/zap"
)

const (
	statePublishTimeout     = 500 * time.Millisecond
	discoveryPublishTimeout = 1 * time.Second
)

// ReadingPublisher forwards meter readings as sensor states.
type ReadingPublisher struct {
	client       *MQTTClient
	meterDevice  events.Device
	bridgeDevice events.Device
	discovery    bool
	expireAfter  time.Duration
	announced    atomic.Bool
	logger       *zap.Logger
}

// NewReadingPublisher announces sensors that HA expires after expireAfter
// without a state update, zero disables expiry.
func NewReadingPublisher(client *MQTTClient, meterDevice, bridgeDevice events.Device, expireAfter time.Duration,
	logger *zap.Logger) *ReadingPublisher {
	return &ReadingPublisher{
		client:       client,
		meterDevice:  meterDevice,
		bridgeDevice: bridgeDevice,
		discovery:    client.cfg.HADiscoveryEnable,
		expireAfter:  expireAfter,
		logger:       logger.With(zap.String("component", "mqtt")),
	}
}

func (p *ReadingPublisher) Publish(reading *pac_modbus.Reading) error {
	if p.discovery && !p.announced.Load() {
		if err := p.PublishHomeAssistantDiscovery(); err != nil {
			return err
		}
		p.announced.Store(true)
	}
	for _, ev := range events.ReadingToSensorEvents(reading) {
		topic := p.client.SensorStateTopic(ev.Id)
		message := formatSensorValue(ev)
		if err := p.client.Publish(topic, message, 1, false, statePublishTimeout); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		p.logger.Debug("sensor published", zap.String("topic", topic), zap.String("value", message))
	}
	return nil
}

func (p *ReadingPublisher) PublishOnline() error {
	return p.client.Publish(p.client.BridgeStateTopic(), MQTT_PAYLOAD_ONLINE, 0, true, statePublishTimeout)
}

func (p *ReadingPublisher) PublishOffline() error {
	return p.client.Publish(p.client.BridgeStateTopic(), MQTT_PAYLOAD_OFFLINE, 0, true, statePublishTimeout)
}

// Reannounce makes the next Publish send discovery configs again,
// a restarted broker may have dropped the retained ones.
func (p *ReadingPublisher) Reannounce() {
	p.announced.Store(false)
}

func (p *ReadingPublisher) PublishHomeAssistantDiscovery() error {
	sensors := append(events.MeterSensors(p.meterDevice), events.BridgeSensors(p.bridgeDevice)...)
	for _, sensor := range sensors {
		msg := GenericSensorToHADiscoveryMessage(p.client, sensor, p.expireAfter)
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		topic := HADiscoverySensorTopic(p.client.DiscoveryTopic(), sensor)
		if err := p.client.Publish(topic, payload, 0, true, discoveryPublishTimeout); err != nil {
			return fmt.Errorf("publish discovery %s: %w", topic, err)
		}
	}
	p.logger.Info("home assistant discovery published", zap.Int("sensors", len(sensors)))
	return nil
}

func formatSensorValue(ev events.SensorUpdateEvent) string {
	return fmt.Sprintf(fmt.Sprintf("%%.%df", ev.Decimals), ev.Value)
}
