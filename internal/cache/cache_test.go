package cache

import (
	"context"
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	payload := []byte("<cp:coreProperties/>")
	a := Key(KindMetadata, payload)
	if !strings.HasPrefix(a, "metadata.") || len(a) != len("metadata.")+64 {
		t.Errorf("unexpected key %q", a)
	}
	if a != Key(KindMetadata, payload) {
		t.Error("expected keys to be stable")
	}
	if a == Key(KindCustomProperties, payload) {
		t.Error("expected kinds to yield different keys")
	}
	if a == Key(KindMetadata, []byte("<office:meta/>")) {
		t.Error("expected payloads to yield different keys")
	}
}

func TestNopCache(t *testing.T) {
	var c Cache = &NopCache{}
	if err := c.Save(context.Background(), DecodedResult{Key: "k", JSON: []byte("{}")}); err != nil {
		t.Fatal(err)
	}
	data, err := c.Get(context.Background(), "k")
	if data != nil || err != nil {
		t.Errorf("expected nothing, got %q, %v", data, err)
	}
}
