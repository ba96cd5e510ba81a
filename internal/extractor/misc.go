package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/johbar/office-metadata-service/internal/cache"
)

// PrintDecodedToStdout prints the decoded metadata (or custom properties) of an XML file as JSON.
// The file can be local or remote (http/https). When url is "-", the file will be read from Stdin
func (e *Extractor) PrintDecodedToStdout(kind cache.Kind, url string, w io.Writer) error {
	var r io.Reader
	switch {
	case strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://"):
		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("fetching %s: %s", url, resp.Status)
		}
		r = resp.Body
	case url == "-":
		r = os.Stdin
	default:
		f, err := os.Open(url)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	limit := int64(e.omsConfig.MaxBodySizeBytes)
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(payload)) > limit {
		return fmt.Errorf("%s: %w", url, ErrBodyTooLarge)
	}
	decoded, err := e.Decode(context.Background(), kind, payload, true)
	if err != nil {
		return err
	}
	if _, err := w.Write(decoded.JSON); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// LogConfigIssues logs build and configuration details worth knowing at startup
func (e *Extractor) LogConfigIssues() {
	buildinfo, _ := debug.ReadBuildInfo()

	e.log.Debug("Info", "buildinfo", buildinfo)
	if os.Getenv("GOMEMLIMIT") != "" {
		e.log.Debug("GOMEMLIMIT", "Bytes", debug.SetMemoryLimit(-1), "MBytes", debug.SetMemoryLimit(-1)/1024/1024)
	}
	if e.cacheNop {
		e.log.Info("Result cache disabled.")
	}
	if e.omsConfig.NoHttp && e.omsConfig.NatsUrl == "" {
		e.log.Warn("HTTP disabled and no external NATS configured. The service is only reachable via embedded NATS, if any.")
	}
}
