package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the environment-driven client configuration.
type Config struct {
	// ChatServerURL is the endpoint-discovery contract: the chat server
	// base URL for the current environment.
	ChatServerURL string `envconfig:"CHAT_SERVER_URL" default:"ws://localhost:8083"`

	// Room coordinates for the conversation the terminal client opens.
	SellerID  string `envconfig:"CHAT_SELLER_ID"`
	ProductID string `envconfig:"CHAT_PRODUCT_ID"`

	// StatusAddr serves /status and /metrics.
	StatusAddr string `envconfig:"STATUS_ADDR" default:":9090"`

	// AMQPURL enables telemetry publication when set.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"client_events"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
