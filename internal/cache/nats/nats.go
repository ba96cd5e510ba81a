package nats

import (
	"errors"
	"log/slog"
	"time"

	"github.com/johbar/office-metadata-service/internal/config"
	"github.com/nats-io/nats.go"
)

var errNatsNotEmbedded = errors.New("NATS has not been embedded in this build")

// SetupNatsConnection connects the service to the external NATS server(s)
// configured by NatsUrl, retrying up to NatsConnectRetries times.
func SetupNatsConnection(conf config.OmsConfig, log *slog.Logger) (*nats.Conn, error) {
	var attempts int

	log.Info("Try connecting to NATS", "url", conf.NatsUrl, "timeoutSecs", conf.NatsTimeout.Seconds())
	for {
		attempts++
		nc, err := nats.Connect(conf.NatsUrl, nats.Name("OMS"), nats.Timeout(conf.NatsTimeout))
		if err == nil {
			return nc, nil
		}
		log.Error("Connecting to NATS failed",
			"url", conf.NatsUrl,
			"timeoutSecs", conf.NatsTimeout.Seconds(),
			"err", err,
			"count", attempts,
			"maxRetries", conf.NatsConnectRetries)
		if attempts > conf.NatsConnectRetries {
			log.Error("Connecting to NATS failed. Retry count exceeded", "err", err, "maxRetries", conf.NatsConnectRetries)
			return nil, err
		}
		time.Sleep(time.Second)
	}
}

// Connect connects to the external NATS server if one is configured and
// starts the embedded one otherwise. It returns nil and no error if neither is available.
func Connect(conf config.OmsConfig, log *slog.Logger) (*nats.Conn, error) {
	if conf.NatsUrl != "" {
		return SetupNatsConnection(conf, log)
	}
	nc, err := ConnectToEmbeddedNatsServer(conf)
	if errors.Is(err, errNatsNotEmbedded) {
		log.Info("No NATS URL configured and NATS not embedded. Running without NATS.")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Info("Embedded NATS server started", "exposed", conf.ExposeNats)
	return nc, nil
}
