package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel      zapcore.Level
	Meter         MeterConfig   `mapstructure:"meter"`
	MQTT          MQTTConfig    `mapstructure:"mqtt"`
	MonitorConfig MonitorConfig `mapstructure:"monitor"`
	MetricsConfig MetricsConfig `mapstructure:"metrics"`
}

type MeterConfig struct {
	Model         string
	Driver        string
	Host          string
	Port          uint
	SerialDevice  string `mapstructure:"serial_device"`
	BaudRate      uint   `mapstructure:"baud_rate"`
	DataBits      uint   `mapstructure:"data_bits"`
	Parity        string
	StopBits      uint   `mapstructure:"stop_bits"`
	UnitId        uint   `mapstructure:"unit_id"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
	ReplaceNaN         bool   `mapstructure:"replace_nan"`
	Print              bool   `mapstructure:"print"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string
}

type MQTTConfig struct {
	Enable            bool
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("meter.model", "PAC3200")
	v.SetDefault("meter.driver", "simonvetter")
	v.SetDefault("meter.host", "")
	v.SetDefault("meter.port", 502)
	v.SetDefault("meter.serial_device", "")
	v.SetDefault("meter.baud_rate", 4800)
	v.SetDefault("meter.data_bits", 8)
	v.SetDefault("meter.parity", "N")
	v.SetDefault("meter.stop_bits", 1)
	v.SetDefault("meter.unit_id", 1)
	v.SetDefault("meter.timeout_millis", 1000)
	v.SetDefault("monitor.poll_interval_millis", 1000)
	v.SetDefault("monitor.replace_nan", true)
	v.SetDefault("monitor.print", true)
	v.SetDefault("mqtt.enable", false)
	v.SetDefault("mqtt.host", "")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.base_topic", "pac2mqtt")
	v.SetDefault("mqtt.ha_discovery_enable", false)
	v.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "pac2mqtt")
}

// Load unmarshals and checks the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = ParseLogLevel(v.GetString("log_level"))

	// check and fix base topic
	baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if cfg.MonitorConfig.PollIntervalMillis < 1000 {
		return nil, errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}
	if cfg.Meter.TimeoutMillis == 0 {
		return nil, errors.New("config param meter.timeout_millis should be > 0")
	}
	if cfg.Meter.UnitId == 0 || cfg.Meter.UnitId > 247 {
		return nil, errors.New("config param meter.unit_id should be in 1..247")
	}
	if cfg.MQTT.Enable && cfg.MQTT.Host == "" {
		return nil, errors.New("config param mqtt.host is required when mqtt is enabled")
	}

	switch strings.ToUpper(cfg.Meter.Model) {
	case "PAC3100":
		if cfg.Meter.SerialDevice == "" {
			return nil, errors.New("config param meter.serial_device is required for a PAC3100")
		}
	case "PAC3200", "PAC4200":
		if cfg.Meter.Host == "" {
			return nil, fmt.Errorf("config param meter.host is required for a %s", cfg.Meter.Model)
		}
	default:
		return nil, fmt.Errorf("config param meter.model: unsupported model %q", cfg.Meter.Model)
	}

	return &cfg, nil
}

func ParseLogLevel(level string) zapcore.Level {
	switch level {
	case "trace":
		return zap.DebugLevel
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "error":
		return zap.ErrorLevel
	case "warn":
		return zap.WarnLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// Redacted returns a copy safe to be logged.
func (cfg Config) Redacted() Config {
	if cfg.MQTT.Username != "" {
		cfg.MQTT.Username = "*redacted*"
	}
	if cfg.MQTT.Password != "" {
		cfg.MQTT.Password = "*redacted*"
	}
	return cfg
}
