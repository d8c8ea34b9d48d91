package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/echobot/bot"
	"github.com/opd-ai/echobot/config"
	"github.com/opd-ai/echobot/metrics"
	"github.com/opd-ai/echobot/persistence"
	"github.com/opd-ai/echobot/version"
)

const metricsShutdownTimeout = 5 * time.Second

func runBot(parent context.Context, cfg config.Config) error {
	logger := logrus.WithField("component", "main")
	logger.WithField("version", version.String()).Info("Starting")

	lock, err := persistence.Acquire(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("%w: %w", bot.ErrFatalInit, err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.WithError(err).Warn("Could not release profile lock")
		}
	}()

	store, err := persistence.New(cfg.DataFile, []byte(cfg.Passphrase))
	if err != nil {
		return fmt.Errorf("%w: %w", bot.ErrFatalInit, err)
	}

	engines, err := bot.Open(store, cfg.EngineOptions())
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Addr != "" {
		m = metrics.New()
		srv := serveMetrics(cfg.Metrics.Addr, m)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.WithError(err).Warn("Could not stop metrics listener")
			}
		}()
	}

	b := bot.New(engines.Session, engines.Media, store, bot.Config{
		Name:                cfg.Name,
		StatusMessage:       cfg.StatusMessage,
		Nodes:               cfg.SessionNodes(),
		Version:             version.String(),
		InfoLines:           cfg.InfoLines,
		AudioKbps:           cfg.AudioBitRate,
		VideoKbps:           cfg.VideoBitRate,
		SweepInterval:       cfg.SweepInterval(),
		InactivityThreshold: cfg.InactivityThreshold(),
		Fresh:               engines.Fresh,
	}, bot.WithMetrics(m))

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return b.Run(ctx)
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"component": "metrics",
			"addr":      addr,
		}).Info("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("component", "metrics").WithError(err).Error("Metrics listener failed")
		}
	}()
	return srv
}
