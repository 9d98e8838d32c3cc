package util

import (
	"github.com/berfenger/pac2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Meter: config.MeterConfig{
			Model:         "PAC3200",
			Driver:        "simonvetter",
			Host:          "-.-.-.-",
			Port:          502,
			UnitId:        1,
			TimeoutMillis: 1000,
		},
		MQTT: config.MQTTConfig{
			Enable:            true,
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "pac2mqtt",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis: 1000,
			ReplaceNaN:         true,
		},
		MetricsConfig: config.MetricsConfig{
			Job: "pac2mqtt",
		},
	}
}
