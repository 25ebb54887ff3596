package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/stackfall/service/internal/auth"
	"github.com/jason-s-yu/stackfall/service/internal/cache"
	"github.com/jason-s-yu/stackfall/service/internal/config"
	"github.com/jason-s-yu/stackfall/service/internal/database"
	"github.com/jason-s-yu/stackfall/service/internal/logging"
	"github.com/jason-s-yu/stackfall/service/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.WithError(err).Fatal("configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	issuer, err := auth.NewIssuer(cfg.SeatSecret, cfg.SeatTTL)
	if err != nil {
		logrus.WithError(err).Fatal("seat tickets")
	}
	opts := server.Options{
		Rules:  cfg.Rules(),
		Tick:   cfg.Tick,
		Issuer: issuer,
	}

	if cfg.RedisAddr != "" {
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		journal, err := cache.Connect(cctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			logrus.WithError(err).Fatal("connect redis")
		}
		defer journal.Close()
		opts.Journal = journal
		logrus.WithField("addr", cfg.RedisAddr).Info("match journal enabled")
	}

	if cfg.DatabaseURL != "" {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		store, err := database.Connect(cctx, cfg.DatabaseURL)
		if err == nil {
			err = store.Migrate(cctx)
		}
		cancel()
		if err != nil {
			logrus.WithError(err).Fatal("connect database")
		}
		defer store.Close()
		opts.Results = store
		logrus.Info("result store enabled")
	}

	srv := server.New(opts)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port": cfg.Port,
			"mode": cfg.Mode.String(),
			"tick": cfg.Tick.String(),
		}).Info("starting server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server exited")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("http shutdown")
	}
}
