package extractor

import (
	"context"
	"errors"
	"time"

	"github.com/johbar/office-metadata-service/internal/cache"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
)

const queueGroup = "office-metadata-service"

// RegisterNatsService exposes the decoders as NATS micro service endpoints.
// Requests carry the raw XML as data; replies are JSON with the
// x-document-* fields as headers.
func (e *Extractor) RegisterNatsService(nc *nats.Conn) (micro.Service, error) {
	svc, err := micro.AddService(nc, micro.Config{
		Name:        "office-metadata",
		Version:     "1.0.0",
		Description: "Decodes metadata from MS Office and Open Document XML parts",
	})
	if err != nil {
		return nil, err
	}
	err = errors.Join(
		svc.AddEndpoint("decode-metadata",
			e.natsHandler(cache.KindMetadata),
			micro.WithEndpointQueueGroup(queueGroup)),
		svc.AddEndpoint("decode-custom-properties",
			e.natsHandler(cache.KindCustomProperties),
			micro.WithEndpointQueueGroup(queueGroup)),
	)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (e *Extractor) natsHandler(kind cache.Kind) micro.HandlerFunc {
	return func(req micro.Request) {
		payload := req.Data()
		e.log.Info("Received Nats request", "kind", kind, "size", len(payload))
		if uint64(len(payload)) > e.omsConfig.MaxBodySizeBytes {
			e.metrics.RecordRejected("too_large")
			req.Error("too_large", ErrBodyTooLarge.Error(), nil)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		noCache := req.Headers().Get("noCache") != ""
		decoded, err := e.Decode(ctx, kind, payload, noCache)
		if err != nil {
			code := "failed"
			if errors.Is(err, ErrContainerFormat) {
				code = "unsupported_format"
			}
			req.Error(code, err.Error(), nil)
			return
		}
		header := micro.Headers{}
		for k, v := range decoded.Headers {
			header[k] = []string{v}
		}
		if err := req.Respond(decoded.JSON, micro.WithHeaders(header)); err != nil {
			e.log.Error("Could not respond to Nats request", "err", err)
		}
	}
}
