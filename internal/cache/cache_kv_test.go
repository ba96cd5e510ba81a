//go:build embed_nats

package cache

import (
	"context"
	"log/slog"
	"testing"

	"github.com/johbar/office-metadata-service/internal/cache/nats"
	"github.com/johbar/office-metadata-service/internal/config"
)

func TestKeyValueCache(t *testing.T) {
	conf, err := config.NewOmsConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	conf.NatsStoreDir = t.TempDir()
	nc, err := nats.ConnectToEmbeddedNatsServer(*conf)
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()
	c, err := New(*conf, slog.New(slog.DiscardHandler), nc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	key := Key(KindMetadata, []byte("<office:meta/>"))
	if data, err := c.Get(ctx, key); data != nil || err != nil {
		t.Fatalf("expected miss, got %q, %v", data, err)
	}
	if err := c.Save(ctx, DecodedResult{Key: key, JSON: []byte(`{"dialect":"odf-meta"}`)}); err != nil {
		t.Fatal(err)
	}
	data, err := c.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"dialect":"odf-meta"}` {
		t.Errorf("unexpected cached value %q", data)
	}
}
