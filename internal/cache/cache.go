package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Kind distinguishes the two decoders, so identical payloads
// decoded differently get different keys.
type Kind string

const (
	KindMetadata         Kind = "metadata"
	KindCustomProperties Kind = "custom-properties"
)

// DecodedResult is the JSON encoded result of decoding one payload
type DecodedResult struct {
	Key  string
	JSON []byte
}

type Cache interface {
	// Get returns the cached JSON for key, or nil if there is none
	Get(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, result DecodedResult) error
}

// Key derives the cache key from the kind of decoder and the raw payload
func Key(kind Kind, payload []byte) string {
	sum := sha256.Sum256(payload)
	return string(kind) + "." + hex.EncodeToString(sum[:])
}

type NopCache struct{}

func (c *NopCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, nil
}

func (c *NopCache) Save(_ context.Context, _ DecodedResult) error {
	return nil
}
