package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-json"
	"github.com/johbar/office-metadata-service/internal/cache"
	"github.com/johbar/office-metadata-service/internal/config"
	"github.com/johbar/office-metadata-service/internal/metrics"
	"github.com/johbar/office-metadata-service/pkg/officexmlparser"
	"github.com/johbar/office-metadata-service/pkg/xmltree"
)

var (
	ErrContainerFormat = errors.New("payload is a container file, not XML; extract docProps/core.xml, docProps/custom.xml or meta.xml first")
	ErrBodyTooLarge    = errors.New("payload exceeds the maximum size")
	ErrUnknownKind     = errors.New("unknown decoder")
)

// containerTypes are rejected. Their subtypes (docx, odt, xlsx, ...) are matched via their parents.
var containerTypes = []string{"application/zip", "application/x-ole-storage", "application/pdf"}

// Decoded is the outcome of decoding one payload
type Decoded struct {
	// JSON is the encoded Metadata or CustomProperties
	JSON []byte
	// Headers is the flat x-document-* representation
	Headers map[string]string
	Cached  bool
}

type Extractor struct {
	omsCache      cache.Cache
	log           *slog.Logger
	metrics       *metrics.Metrics
	cacheNop      bool
	saveChan      chan cache.DecodedResult
	saverFinished chan struct{}
	omsConfig     *config.OmsConfig
}

func New(config *config.OmsConfig, omsCache cache.Cache, m *metrics.Metrics, logger *slog.Logger) *Extractor {
	if omsCache == nil {
		omsCache = &cache.NopCache{}
	}
	if m == nil {
		m = metrics.New()
	}
	extract := &Extractor{
		omsCache:      omsCache,
		log:           logger,
		metrics:       m,
		saveChan:      make(chan cache.DecodedResult, 100),
		saverFinished: make(chan struct{}),
		omsConfig:     config,
	}
	if logger == nil {
		extract.log = slog.New(slog.DiscardHandler)
	}
	_, extract.cacheNop = omsCache.(*cache.NopCache)
	go extract.saveDecodedResults()
	return extract
}

// Close stops the background saver after all pending results have been saved.
func (e *Extractor) Close() {
	close(e.saveChan)
	<-e.saverFinished
}

func (e *Extractor) saveDecodedResults() {
	defer close(e.saverFinished)
	for result := range e.saveChan {
		for i := 0; i <= 5; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := e.omsCache.Save(ctx, result)
			cancel()
			if err == nil {
				e.log.Debug("Saved decoded result in NATS key-value bucket", "key", result.Key, "size", len(result.JSON))
				break
			}
			e.log.Warn("Could not save decoded result to cache", "retries", i, "key", result.Key, "err", err)
		}
	}
}

// Decode decodes payload with the decoder of the given kind.
// Cached results are returned unless noCache is set.
func (e *Extractor) Decode(ctx context.Context, kind cache.Kind, payload []byte, noCache bool) (*Decoded, error) {
	if kind != cache.KindMetadata && kind != cache.KindCustomProperties {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if err := checkNotContainer(payload); err != nil {
		e.metrics.RecordRejected("container")
		return nil, err
	}
	key := cache.Key(kind, payload)
	if !noCache && !e.cacheNop {
		if d := e.fromCache(ctx, kind, key); d != nil {
			return d, nil
		}
	}

	started := time.Now()
	tree := xmltree.Parse(string(payload))
	if tree.Err() != nil {
		e.log.Debug("Payload is not well-formed XML", "kind", kind, "err", tree.Err())
	}
	var v any
	var headers map[string]string
	switch kind {
	case cache.KindMetadata:
		m := officexmlparser.DecodeMetadataTree(tree)
		e.metrics.RecordDecode(string(kind), string(m.Dialect), started)
		if invalid := m.InvalidTimestamps(); len(invalid) > 0 {
			e.log.Warn("Keeping unparsable dates as they are", "fields", invalid, "created", m.Created, "modified", m.Modified)
		}
		v, headers = m, m.Map()
	case cache.KindCustomProperties:
		p := officexmlparser.DecodeCustomPropertiesTree(tree)
		e.metrics.RecordDecode(string(kind), "", started)
		v, headers = p, p.Map()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding decoded %s: %w", kind, err)
	}
	if !e.cacheNop {
		select {
		case e.saveChan <- cache.DecodedResult{Key: key, JSON: data}:
		default:
			e.log.Warn("Save queue full, result not cached", "key", key)
		}
	}
	return &Decoded{JSON: data, Headers: headers}, nil
}

func (e *Extractor) fromCache(ctx context.Context, kind cache.Kind, key string) *Decoded {
	data, err := e.omsCache.Get(ctx, key)
	if err != nil {
		e.metrics.RecordCacheLookup("error")
		e.log.Error("Could not get decoded result from cache", "key", key, "err", err)
		return nil
	}
	if data == nil {
		e.metrics.RecordCacheLookup("miss")
		return nil
	}
	var headers map[string]string
	switch kind {
	case cache.KindMetadata:
		var m officexmlparser.Metadata
		err = json.Unmarshal(data, &m)
		headers = m.Map()
	case cache.KindCustomProperties:
		var p officexmlparser.CustomProperties
		err = json.Unmarshal(data, &p)
		headers = p.Map()
	}
	if err != nil {
		e.metrics.RecordCacheLookup("error")
		e.log.Error("Cached result is not valid JSON", "key", key, "err", err)
		return nil
	}
	e.metrics.RecordCacheLookup("hit")
	e.log.Debug("Serving decoded result from cache", "key", key)
	return &Decoded{JSON: data, Headers: headers, Cached: true}
}

func checkNotContainer(payload []byte) error {
	mtype := mimetype.Detect(payload)
	for m := mtype; m != nil; m = m.Parent() {
		for _, container := range containerTypes {
			if m.Is(container) {
				return fmt.Errorf("%w (detected %s)", ErrContainerFormat, mtype.String())
			}
		}
	}
	return nil
}
