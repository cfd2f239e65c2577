package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/handler"
	"github.com/noah-isme/hemo-scheduler-api/pkg/config"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx)
		},
	}
}

func runServer(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := a.start(ctx); err != nil {
		return err
	}
	if a.backups != nil {
		go a.backups.RunCleanup(ctx, a.cfg.Backup.CleanupInterval)
	}

	checks := map[string]handler.Pinger{"database": a.db}
	if a.redis != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return a.redis.Ping(ctx).Err() })
	}
	routerCfg := handler.RouterConfig{
		APIPrefix:      a.cfg.APIPrefix,
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		Docs:           a.cfg.Env != config.EnvProduction,
		Logger:         a.logger,
		Metrics:        a.metrics,
		Schedule:       handler.NewScheduleHandler(a.schedule),
		Analytics:      handler.NewAnalyticsHandler(a.analytics, a.metrics),
		Imports:        handler.NewImportHandler(a.imports),
		Exports:        handler.NewExportHandler(a.exports),
		Data:           handler.NewDataHandler(a.data, a.backups),
		Health:         handler.NewHealthHandler(a.metrics, checks),
	}
	if a.cfg.JWT.Enabled {
		routerCfg.Auth = a.auth
	} else {
		a.logger.Warn("authentication disabled, every caller acts as admin")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           handler.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", zap.Error(err))
	}
	return a.stop(shutdownCtx)
}
