package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/amoylab/rentmanager/internal/apiserver/apidoc"
	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/apiserver/handler"
	"github.com/amoylab/rentmanager/internal/apiserver/notifier"
	"github.com/amoylab/rentmanager/internal/apiserver/scheduler"
	"github.com/amoylab/rentmanager/internal/apiserver/service"
	"github.com/amoylab/rentmanager/internal/apiserver/validation"
	"github.com/amoylab/rentmanager/internal/auth/jwt"
	"github.com/amoylab/rentmanager/internal/common/errorx"
	"github.com/amoylab/rentmanager/internal/i18n"
	"github.com/amoylab/rentmanager/pkg/metrics"
	"github.com/amoylab/rentmanager/pkg/trace"
	"github.com/amoylab/rentmanager/pkg/version"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func runServe(ctx context.Context) error {
	cfg, lg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signalContext(ctx)
	defer cancel()

	lg.Info("starting apiserver", zap.String("version", version.Full()))
	gin.SetMode(cfg.Server.Mode)

	shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdownTracing(sctx); err != nil {
			lg.Warn("failed to shutdown tracing", zap.Error(err))
		}
	}()

	if err := validation.Register(); err != nil {
		return err
	}
	tr, err := i18n.New(cfg.I18n.DefaultLang, cfg.I18n.Path)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}
	doc, err := apidoc.Load()
	if err != nil {
		return err
	}
	jwtService, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	if err != nil {
		return fmt.Errorf("failed to create jwt service: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, lg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	n, err := notifier.NewNotifier(lg, cfg.Notifier)
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}
	defer n.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
	}

	if cfg.Reconcile.Enabled {
		rs := scheduler.NewReconcileScheduler(service.NewReconciler(db, n, m, lg), cfg.Reconcile.Interval, lg)
		if err := rs.Start(ctx); err != nil {
			return err
		}
		defer rs.Stop()
	}

	routerCfg := handler.RouterConfig{
		Service:     service.New(db, n, m, lg),
		Errors:      errorx.NewErrorHandler(lg.Named("http.error"), tr),
		I18n:        tr,
		JWT:         jwtService,
		CookieName:  cfg.JWT.CookieName,
		DB:          db,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Doc:         doc,
		Logger:      lg,
	}
	if cfg.Tracing.Enabled {
		routerCfg.TracingService = cfg.Tracing.ServiceName
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("shutting down apiserver")
	sctx, scancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		lg.Error("failed to shutdown http server", zap.Error(err))
		return err
	}
	return nil
}
