package extractor

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-contrib/expvar"
	"github.com/gin-gonic/gin"
	"github.com/johbar/office-metadata-service/internal/cache"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sloggin "github.com/samber/slog-gin"
)

// Router returns the HTTP interface of the service
func (e *Extractor) Router() *gin.Engine {
	router := gin.New()
	router.Use(sloggin.New(e.log), gin.Recovery())
	router.POST("/metadata", e.DecodeMetadata)
	router.POST("/custom-properties", e.DecodeCustomProperties)
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/debug/vars", expvar.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(e.metrics.Registry, promhttp.HandlerOpts{})))
	return router
}

// DecodeMetadata responds with the metadata found in the XML request body
// as JSON and as x-document-* headers.
func (e *Extractor) DecodeMetadata(c *gin.Context) {
	e.handle(c, cache.KindMetadata)
}

// DecodeCustomProperties responds with the custom properties found in the XML request body.
func (e *Extractor) DecodeCustomProperties(c *gin.Context) {
	e.handle(c, cache.KindCustomProperties)
}

func (e *Extractor) handle(c *gin.Context, kind cache.Kind) {
	payload, err := e.readBody(c.Request)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
			e.metrics.RecordRejected("too_large")
		}
		e.log.Error("Error reading request body", "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	_, noCache := c.GetQuery("noCache")
	if _, ok := c.GetQuery("nocache"); ok {
		noCache = true
	}
	decoded, err := e.Decode(c.Request.Context(), kind, payload, noCache)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrContainerFormat) {
			status = http.StatusUnsupportedMediaType
		}
		e.log.Error("Decoding failed", "kind", kind, "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	addMetadataAsHeaders(c.Writer.Header(), decoded.Headers)
	if decoded.Cached {
		c.Header("x-cache", "hit")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", decoded.JSON)
}

// readBody reads the request body, transparently decompressing gzip,
// and fails if it is bigger than the configured maximum.
func (e *Extractor) readBody(r *http.Request) ([]byte, error) {
	var body io.Reader = r.Body
	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, fmt.Errorf("reading gzip encoded body: %w", err)
		}
		defer zr.Close()
		body = zr
	}
	limit := int64(e.omsConfig.MaxBodySizeBytes)
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", ErrBodyTooLarge, limit)
	}
	return data, nil
}

func addMetadataAsHeaders(header http.Header, metadata map[string]string) {
	for k, v := range metadata {
		header.Add(k, v)
	}
}
