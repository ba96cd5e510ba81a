package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/johbar/office-metadata-service/internal/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// KeyValueCache stores decoded results in a NATS JetStream key-value bucket
type KeyValueCache struct {
	jetstream.KeyValue
	nc *nats.Conn
	js jetstream.JetStream
}

func New(conf config.OmsConfig, log *slog.Logger, nc *nats.Conn) (*KeyValueCache, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if nc == nil {
		return nil, errors.New("no connection to NATS")
	}
	js, err := setupJetstream(conf, nc, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      conf.Bucket,
		Description: "decoded office document metadata",
		TTL:         conf.CacheTTL,
		Storage:     jetstream.FileStorage,
		Compression: true,
		Replicas:    conf.Replicas,
	})
	if err != nil {
		log.Error("Creating NATS key-value bucket failed", "err", err)
		return nil, fmt.Errorf("initializing NATS key-value bucket: %w", err)
	}
	log.Info("NATS key-value bucket initialized.", "bucket", conf.Bucket)
	return &KeyValueCache{kv, nc, js}, nil
}

func setupJetstream(conf config.OmsConfig, nc *nats.Conn, log *slog.Logger) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		log.Error("Error when initializing NATS JetStream", "err", err.Error())
		return nil, err
	}

	for attempts := 0; attempts <= conf.NatsConnectRetries; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		_, err = js.AccountInfo(ctx)
		cancel()
		if err == nil {
			return js, nil
		}
		if errors.Is(err, jetstream.ErrJetStreamNotEnabled) || errors.Is(err, jetstream.ErrJetStreamNotEnabledForAccount) {
			return nil, err
		}
		log.Error("NATS JetStream check failed. Is JetStream enabled in external NATS server(s)?",
			"err", err,
			"count", attempts,
			"maxRetries", conf.NatsConnectRetries)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("retry count exceeded: %w", err)
}

func (c *KeyValueCache) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := c.KeyValue.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving %s from key-value bucket: %w", key, err)
	}
	return entry.Value(), nil
}

func (c *KeyValueCache) Save(ctx context.Context, result DecodedResult) error {
	_, err := c.KeyValue.Put(ctx, result.Key, result.JSON)
	return err
}
