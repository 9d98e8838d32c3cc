package mqtt

import (
	"fmt"
	"time"

	"github.com/berfenger/pac2mqtt/internal/events"

	"github.com/carlmjohnson/versioninfo"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	Origin            HADiscoveryOrigin `json:"origin"`
	StateTopic        string            `json:"state_topic"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	Precision         *uint             `json:"suggested_display_precision,omitempty"`
	ExpireAfter       int               `json:"expire_after,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	EnabledByDefault  *bool             `json:"enabled_by_default,omitempty"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	Icon              string            `json:"icon,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

type HADiscoveryOrigin struct {
	Name    string `json:"name"`
	Version string `json:"sw_version,omitempty"`
}

func HADiscoverySensorTopic(discoveryTopic string, sensor events.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", discoveryTopic, sensor.SensorType, sensor.Device.Id, sensor.Id)
}

// GenericSensorToHADiscoveryMessage builds the discovery config of a sensor.
// A positive expireAfter makes HA mark the sensor unavailable when no state
// arrived within that time; it is ignored for the bridge connectivity sensor.
func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor events.GenericSensor, expireAfter time.Duration) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:            device(sensor.Device),
		Origin:            HADiscoveryOrigin{Name: "pac2mqtt", Version: versioninfo.Short()},
		StateTopic:        stateTopic(client, sensor),
		AvTopic:           client.BridgeStateTopic(),
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		EntityCategory:    sensor.EntityCategory,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		Name:              sensor.Name,
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
	}

	switch {
	case sensor.Id == events.SENSOR_ID_BRIDGE_STATE:
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	case sensor.SensorType == events.SENSOR_TYPE_BINARY:
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	default:
		precision := sensor.Decimals
		disConfig.Precision = &precision
		if expireAfter > 0 {
			disConfig.ExpireAfter = int(expireAfter.Seconds())
		}
	}
	return disConfig
}

func stateTopic(client *MQTTClient, sensor events.GenericSensor) string {
	if sensor.Id == events.SENSOR_ID_BRIDGE_STATE {
		return client.BridgeStateTopic()
	}
	if sensor.SensorType == events.SENSOR_TYPE_BINARY {
		return client.BinarySensorStateTopic(sensor.Id)
	}
	return client.SensorStateTopic(sensor.Id)
}

func device(d events.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
