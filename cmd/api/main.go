package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adactor "github.com/berfenger/ld2450ble2mqtt/internal/adapter/actor"
	"github.com/berfenger/ld2450ble2mqtt/internal/adapter/history"
	"github.com/berfenger/ld2450ble2mqtt/internal/config"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/actor"
	"github.com/berfenger/ld2450ble2mqtt/internal/server"
	"github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"
	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	slog.Info("ld2450ble2mqtt", "version", versioninfo.Short())

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	// init device actor provider
	deviceProv, err := deviceActorProvider(cfg, logger)
	if err != nil {
		logger.Fatal("could not create device reader", zap.Error(err))
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, deviceProv, mqttActorProvider(cfg, logger), historyActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		logger.Fatal("could not spawn master actor", zap.Error(err))
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => LD2450_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("LD2450_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("ld2450")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = config.ParseLogLevel(viper.GetString("log_level"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func deviceActorProvider(cfg *config.Config, logger *zap.Logger) (actor.DeviceActorProvider, error) {

	readTimeout := time.Duration(cfg.Device.ReadTimeoutMillis) * time.Millisecond

	var reader ld2450.Reader
	if cfg.Device.Mock {
		reader = ld2450.NewTestReader(cfg.Device.Address)
	} else {
		serialReader, err := ld2450.CreateSerialReader(cfg.Device.SerialPort, cfg.Device.BaudRate,
			cfg.Device.Address, readTimeout, logger)
		if err != nil {
			return nil, err
		}
		reader = serialReader
	}

	return func() *adactor.DeviceActor {
		return adactor.NewDeviceActor(reader, readTimeout, logger)
	}, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func historyActorProvider(cfg *config.Config, logger *zap.Logger) actor.HistoryActorProvider {
	return func(es *eventstream.EventStream) *adactor.HistoryActor {
		return adactor.NewHistoryActor(func() (*history.Store, error) {
			return history.NewStore(cfg.History.Path)
		}, time.Duration(cfg.History.MaxAgeHours)*time.Hour, es, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("http_log", false)
	viper.SetDefault("device.address", "")
	viper.SetDefault("device.name", "LD2450")
	viper.SetDefault("device.mock", false)
	viper.SetDefault("device.serial_port", "")
	viper.SetDefault("device.baud_rate", ld2450.DefaultBaudRate)
	viper.SetDefault("device.read_timeout_millis", 1000)
	viper.SetDefault("coordinator.update_interval_millis", 500)
	viper.SetDefault("coordinator.max_failures", 3)
	viper.SetDefault("mqtt.host", "")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "ld2450")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("history.enable", false)
	viper.SetDefault("history.path", "ld2450_history.db")
	viper.SetDefault("history.max_age_hours", 24)
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
