package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/johbar/office-metadata-service/internal/cache"
	natsconn "github.com/johbar/office-metadata-service/internal/cache/nats"
	"github.com/johbar/office-metadata-service/internal/config"
	"github.com/johbar/office-metadata-service/internal/extractor"
	"github.com/johbar/office-metadata-service/internal/metrics"
	"github.com/nats-io/nats.go"
)

func main() {
	conf, err := config.NewOmsConfigFromEnv()
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	// one shot mode: don't start a server, just decode a single file provided on the command line
	if args := os.Args; len(args) > 1 {
		os.Exit(oneShot(conf, args[1:]))
	}

	logger := conf.Logger()
	nc, err := natsconn.Connect(*conf, logger)
	if err != nil {
		logger.Error("Connecting to NATS failed", "err", err)
		if conf.FailWithoutJetstream {
			os.Exit(1)
		}
	}
	omsCache := setupCache(conf, logger, nc)

	extract := extractor.New(conf, omsCache, metrics.New(), logger)
	extract.LogConfigIssues()
	if nc != nil {
		if _, err := extract.RegisterNatsService(nc); err != nil {
			logger.Error("Registering NATS micro service failed", "err", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.NoHttp {
		if nc == nil {
			logger.Error("Fatal: NATS not connected and HTTP disabled.")
			os.Exit(1)
		}
		logger.Info("Service started with no HTTP endpoints. Waiting for interrupt.")
		<-ctx.Done()
	} else {
		srv := &http.Server{Addr: conf.SrvAddr, Handler: extract.Router()}
		go func() {
			logger.Info("Service started", "address", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Webserver failed", "err", err)
				stop()
			}
		}()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutting down HTTP server failed", "err", err)
		}
		cancel()
		logger.Info("HTTP Server stopped.")
	}
	extract.Close()
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logger.Error("Draining NATS connection failed", "err", err)
		}
	}
}

func setupCache(conf *config.OmsConfig, logger *slog.Logger, nc *nats.Conn) cache.Cache {
	if conf.NoCache || nc == nil {
		return &cache.NopCache{}
	}
	kv, err := cache.New(*conf, logger, nc)
	if err != nil {
		logger.Error("Result cache not available", "err", err)
		if conf.FailWithoutJetstream {
			os.Exit(1)
		}
		return &cache.NopCache{}
	}
	return kv
}

// oneShot decodes the file named by args and prints the JSON result.
// args is either [path] or ["custom", path].
func oneShot(conf *config.OmsConfig, args []string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: conf.LogLevel}))
	kind := cache.KindMetadata
	if len(args) > 1 && args[0] == "custom" {
		kind = cache.KindCustomProperties
		args = args[1:]
	}
	extract := extractor.New(conf, &cache.NopCache{}, metrics.New(), logger)
	defer extract.Close()
	if err := extract.PrintDecodedToStdout(kind, args[0], os.Stdout); err != nil {
		logger.Error("Could not decode document", "path", args[0], "err", err)
		return 1
	}
	return 0
}
