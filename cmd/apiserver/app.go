package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/apiserver/notifier"
	"github.com/amoylab/rentmanager/internal/apiserver/service"
	"github.com/amoylab/rentmanager/internal/auth/jwt"
	"github.com/amoylab/rentmanager/internal/common/config"
	"github.com/amoylab/rentmanager/pkg/logger"

	"go.uber.org/zap"
)

const defaultConfigFile = "apiserver.yaml"

// getConfigPath prefers --conf, then $CONFIG_PATH, then the default file name
func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return envPath
	}
	return defaultConfigFile
}

func loadConfig() (*config.APIServerConfig, *zap.Logger, error) {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](getConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration from %s: %w", cfgPath, err)
	}
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	lg.Info("loaded configuration", zap.String("path", cfgPath))
	return cfg, lg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runReconcile(ctx context.Context, out io.Writer) error {
	cfg, lg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.NewDatabase(&cfg.Database, lg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := notifier.NewNotifier(lg, cfg.Notifier)
	if err != nil {
		return err
	}
	defer n.Close()

	ctx, cancel := signalContext(ctx)
	defer cancel()

	res, err := service.NewReconciler(db, n, nil, lg).Sweep(ctx)
	if res != nil {
		fmt.Fprintf(out, "checked %d rooms, corrected %d\n", res.Checked, len(res.Corrected))
		for _, tr := range res.Corrected {
			fmt.Fprintf(out, "  %s: %s -> %s\n", tr.RoomID, tr.From, tr.To)
		}
	}
	return err
}

func runToken(out io.Writer) error {
	cfg, _, err := config.LoadConfig[config.APIServerConfig](getConfigPath())
	if err != nil {
		return err
	}
	svc, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(tokenUser, tokenEmail)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func runWatch(ctx context.Context, out io.Writer) error {
	cfg, lg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	n, err := notifier.NewNotifier(lg, cfg.Notifier)
	if err != nil {
		return err
	}
	defer n.Close()

	ctx, cancel := signalContext(ctx)
	defer cancel()

	events, err := n.Watch(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}
