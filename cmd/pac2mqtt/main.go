package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/berfenger/pac2mqtt/internal/config"
	"github.com/berfenger/pac2mqtt/internal/events"
	"github.com/berfenger/pac2mqtt/internal/metrics"
	"github.com/berfenger/pac2mqtt/internal/mqtt"
	"github.com/berfenger/pac2mqtt/internal/poller"
	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"

	"github.com/carlmjohnson/versioninfo"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	mqttConnectTimeout    = 5 * time.Second
	mqttDisconnectTimeout = 250 * time.Millisecond
)

func main() {

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.DateTime,
	})))

	once := flag.Bool("once", false, "read the meter once, print the reading and exit")
	clearTariff := flag.Int("clear-tariff", 0, "reset the energy counters of tariff 1 or 2 and exit")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(versioninfo.Short())
		return
	}

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	slog.Info("Using", "config", cfg.Redacted())

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *once, *clearTariff); err != nil {
		logger.Error("pac2mqtt stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, once bool, clearTariff int) error {

	var meterMetrics *metrics.Metrics
	var instrumentation *pac_modbus.ModbusInstrument
	if cfg.MetricsConfig.PushgatewayURL != "" {
		meterMetrics = metrics.NewMetrics(meterAddress(cfg))
		instrumentation = meterMetrics.ModbusInstrument()
	}

	reader, err := createReader(cfg, logger, instrumentation)
	if err != nil {
		return err
	}
	if err := reader.Open(); err != nil {
		return fmt.Errorf("open %s: %w", meterAddress(cfg), err)
	}
	defer reader.Close()

	if err := reader.Validate(); err != nil {
		return err
	}
	logger.Info("meter ready", zap.String("model", string(reader.Model())), zap.String("address", meterAddress(cfg)))

	if clearTariff != 0 {
		tariffs, err := reader.ClearTariff(clearTariff)
		if err != nil {
			return err
		}
		fmt.Printf("T1: %s\nT2: %s\n", tariffs.Tariff1, tariffs.Tariff2)
		return nil
	}

	var opts []poller.PollerOption
	if cfg.MonitorConfig.Print || once {
		opts = append(opts, poller.WithSink("stdout", poller.NewPrinterSink(os.Stdout, cfg.MonitorConfig.ReplaceNaN)))
	}

	if cfg.MQTT.Enable && !once {
		publisher, disconnect, err := startMQTT(cfg, reader.Model(), 3*pollInterval(cfg), logger)
		if err != nil {
			return err
		}
		defer disconnect()
		opts = append(opts, poller.WithSink("mqtt", publisher))
	}

	if meterMetrics != nil {
		opts = append(opts,
			poller.WithSink("pushgateway", metrics.NewPushSink(meterMetrics, cfg.MetricsConfig.PushgatewayURL, cfg.MetricsConfig.Job)),
			poller.WithReadErrorHandler(meterMetrics.ReadError))
	}

	p := poller.NewPoller(reader, pollInterval(cfg), logger, opts...)
	if once {
		return p.PollOnce(ctx)
	}

	err = p.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

func initConfig() (*config.Config, error) {

	v := viper.New()
	config.SetDefaults(v)

	v.SetEnvPrefix("pac2mqtt")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			v.SetConfigFile(cfgFile)

			err = v.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	return config.Load(v)
}

func createReader(cfg *config.Config, logger *zap.Logger, instrumentation *pac_modbus.ModbusInstrument) (pac_modbus.PACModbusReader, error) {

	model, err := pac_modbus.ParseModel(cfg.Meter.Model)
	if err != nil {
		return nil, err
	}
	driver, err := pac_modbus.ParseDriver(cfg.Meter.Driver)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Meter.TimeoutMillis) * time.Millisecond
	unitId := uint8(cfg.Meter.UnitId)

	if model.IsTCP() {
		return pac_modbus.CreatePACx200ModbusReader(model, cfg.Meter.Host, cfg.Meter.Port, unitId, timeout,
			driver, logger, instrumentation)
	}

	serial := pac_modbus.SerialConfig{
		Device:   cfg.Meter.SerialDevice,
		BaudRate: cfg.Meter.BaudRate,
		DataBits: cfg.Meter.DataBits,
		Parity:   cfg.Meter.Parity,
		StopBits: cfg.Meter.StopBits,
	}
	return pac_modbus.CreatePAC3100ModbusReader(serial, unitId, timeout, driver, logger, instrumentation)
}

func startMQTT(cfg *config.Config, model pac_modbus.Model, expireAfter time.Duration,
	logger *zap.Logger) (*mqtt.ReadingPublisher, func(), error) {

	bridge := events.BridgeDevice(cfg.MQTT.BaseTopic)
	meter := events.MeterDevice(model, meterAddress(cfg), uint8(cfg.Meter.UnitId), bridge)

	var publisher *mqtt.ReadingPublisher
	onConnect := func(pahomqtt.Client) {
		logger.Info("mqtt connected")
		publisher.Reannounce()
		if err := publisher.PublishOnline(); err != nil {
			logger.Warn("could not publish bridge state", zap.Error(err))
		}
	}
	onConnectionLost := func(_ pahomqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	}

	client := mqtt.CreateMQTTClient(cfg, mqtt.OptsFromConfig(cfg), onConnect, onConnectionLost)
	publisher = mqtt.NewReadingPublisher(client, meter, bridge, expireAfter, logger)

	if err := client.Connect(mqttConnectTimeout); err != nil {
		return nil, nil, fmt.Errorf("mqtt connect: %w", err)
	}

	disconnect := func() {
		if err := publisher.PublishOffline(); err != nil {
			logger.Warn("could not publish bridge state", zap.Error(err))
		}
		client.Disconnect(mqttDisconnectTimeout)
	}
	return publisher, disconnect, nil
}

func pollInterval(cfg *config.Config) time.Duration {
	return time.Duration(cfg.MonitorConfig.PollIntervalMillis) * time.Millisecond
}

func meterAddress(cfg *config.Config) string {
	model, err := pac_modbus.ParseModel(cfg.Meter.Model)
	if err == nil && !model.IsTCP() {
		return cfg.Meter.SerialDevice
	}
	return fmt.Sprintf("%s:%d", cfg.Meter.Host, cfg.Meter.Port)
}
