package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"go-simpler.org/env"
)

// OmsConfig represents the configuration of this service
type OmsConfig struct {
	// Name of the key-value bucket in NATS to use for cached results.
	// Default: OMS_DECODED
	Bucket string `env:"OMS_BUCKET" default:"OMS_DECODED" validate:"required,excludesall=.*>"`
	// How long decoded results are kept in the bucket. Default: 24h
	CacheTTL time.Duration `env:"OMS_CACHE_TTL" default:"24h" validate:"gte=0"`
	// Add source info to log statement. Default: false
	Debug bool `env:"OMS_DEBUG" default:"false"`
	// wether to expose embedded NATS server to other clients. Default: false
	ExposeNats bool `env:"OMS_EXPOSE_NATS" default:"false"`
	// If true the service will exit with an error if NATS or JetStream can't be connected
	FailWithoutJetstream bool `env:"OMS_FAIL_WITHOUT_JS" default:"false"`
	// Log level (DEBUG, INFO, WARN, ERROR)
	LogLevelStr string `env:"OMS_LOG_LEVEL" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	LogLevel    slog.Level
	// Maximum size of a request body; bigger payloads are rejected
	MaxBodySize      string `env:"OMS_MAX_BODY_SIZE" default:"10MiB"`
	MaxBodySizeBytes uint64
	// NATS max msg size (embedded server only)
	NatsMaxPayload int32 `env:"OMS_MAX_PAYLOAD" default:"8388608" validate:"gt=0"`
	// embedded NATS server storage location. Default: /tmp/nats
	NatsStoreDir string `env:"OMS_NATS_STORE_DIR"`
	// embedded NATS server host/ip address, if exposed. Default: localhost
	NatsHost string `env:"OMS_NATS_HOST" default:"localhost"`
	// embedded NATS server port, if exposed. Default: 4222
	NatsPort int `env:"OMS_NATS_PORT" default:"4222" validate:"gte=0,lte=65535"`
	// External NATS URL, e.g. nats://localhost:4222
	NatsUrl string `env:"OMS_NATS_URL" validate:"omitempty,url"`
	// Timeout for the external NATS connection
	NatsTimeout time.Duration `env:"OMS_NATS_TIMEOUT" default:"15s"`
	// NatsConnectRetries is the number of attempts to connect to external NATS server(s)
	NatsConnectRetries int `env:"OMS_NATS_CONNECT_RETRIES" default:"10" validate:"gte=0"`
	// disable the result cache
	NoCache bool `env:"OMS_NO_CACHE" default:"false"`
	// if true, disable HTTP Server in favor of NATS Microservice interface
	NoHttp bool `env:"OMS_NO_HTTP" default:"false"`
	// How many replicas of the bucket to create. Default: 1
	Replicas int `env:"OMS_REPLICAS" default:"1" validate:"gte=1"`
	// HTTP listen address and/or port. Default: ':8080'
	SrvAddr string `env:"OMS_HOST_PORT" default:":8080" validate:"required"`
}

var stdout io.Writer = os.Stdout

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewOmsConfigFromEnv returns a service config object
// populated with defaults and values from environment vars
func NewOmsConfigFromEnv() (*OmsConfig, error) {
	var cfg OmsConfig
	if err := env.Load(&cfg, nil); err != nil {
		return nil, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config from env: %w", err)
	}
	err := cfg.LogLevel.UnmarshalText([]byte(cfg.LogLevelStr))
	if err != nil {
		return nil, fmt.Errorf("parsing log level from env: %w", err)
	}
	maxSize, err := humanize.ParseBytes(cfg.MaxBodySize)
	if err != nil {
		return nil, fmt.Errorf("parsing max body size from env: %w", err)
	}
	cfg.MaxBodySizeBytes = maxSize
	return &cfg, nil
}

// Logger returns a JSON logger writing to stdout, honoring LogLevel and Debug
func (c *OmsConfig) Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: c.LogLevel, AddSource: c.Debug}))
}
