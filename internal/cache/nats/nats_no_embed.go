//go:build !embed_nats

package nats

import (
	omsconfig "github.com/johbar/office-metadata-service/internal/config"
	"github.com/nats-io/nats.go"
)

const NatsEmbedded bool = false

func ConnectToEmbeddedNatsServer(_ omsconfig.OmsConfig) (*nats.Conn, error) {
	return nil, errNatsNotEmbedded
}
