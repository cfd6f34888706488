// Package config loads settings from an optional YAML file and MIGROMAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "MIGROMAT"

// Config holds the configuration for the application.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	DatabaseURL string `mapstructure:"database_url"`
	PluginsPath string `mapstructure:"plugins_path"`

	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`

	EventBus struct {
		Type         string `mapstructure:"type"`
		KafkaBrokers string `mapstructure:"kafka_brokers"`
	} `mapstructure:"event_bus"`

	Executor struct {
		StepDelay time.Duration `mapstructure:"step_delay"`
	} `mapstructure:"executor"`

	Scheduler struct {
		Enabled  bool          `mapstructure:"enabled"`
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"scheduler"`

	Tracing struct {
		Enabled     bool   `mapstructure:"enabled"`
		ServiceName string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("database_url", "memory://")
	v.SetDefault("plugins_path", "./plugins")
	v.SetDefault("server.port", 9091)
	v.SetDefault("event_bus.type", "gochannel")
	v.SetDefault("event_bus.kafka_brokers", "")
	v.SetDefault("executor.step_delay", 100*time.Millisecond)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", time.Minute)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "migromat")
}

// Load reads path when given, otherwise migromat.yaml from the working directory or ./config when
// present. Environment variables win over the file: server.port is read from MIGROMAT_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("migromat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &config, nil
}
