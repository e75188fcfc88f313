package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marcus/menuboard/internal/cloud"
	"github.com/marcus/menuboard/internal/config"
	"github.com/marcus/menuboard/internal/crypto"
	"github.com/marcus/menuboard/internal/persist"
	"github.com/marcus/menuboard/internal/session"
	"github.com/marcus/menuboard/internal/store"
)

const logFile = "menuboard.log"

// app bundles everything a command needs.
type app struct {
	cfg    *config.Config
	store  *store.Store
	sess   *session.Session
	logger *slog.Logger

	closers []io.Closer
}

// loadConfig reads the config and applies the global flags.
func loadConfig() (*config.Config, error) {
	config.LoadDotenv()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// openApp wires config, store, cloud and session. CLI commands log to
// stderr.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, os.Stderr)
}

// openBoardApp is openApp for the TUI, which owns the terminal and so logs
// to a file in the data directory.
func openBoardApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	a, err := newApp(ctx, cfg, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closers = append(a.closers, f)
	return a, nil
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	logger := cfg.NewLogger(logOut)

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	remote, err := cloud.Open(ctx, cfg.CloudOptions())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("cloud: %w", err)
	}

	var key []byte
	if cfg.Cloud.Secret != "" {
		if key, err = crypto.KeyFromSecret(cfg.Cloud.Secret); err != nil {
			st.Close()
			return nil, fmt.Errorf("cloud secret: %w", err)
		}
	} else if remote != nil {
		logger.Warn("cloud backup is not encrypted; set cloud.secret")
	}

	gw := persist.New(st, persist.Options{
		Remote:    remote,
		ObjectKey: cfg.Cloud.Object,
		Key:       key,
		Timeout:   cfg.CloudTimeout(),
		Logger:    logger,
	})

	return &app{
		cfg:    cfg,
		store:  st,
		sess:   session.New(gw, version, logger),
		logger: logger,
	}, nil
}

// Close releases the store and any log file.
func (a *app) Close() error {
	err := a.store.Close()
	for _, c := range a.closers {
		c.Close()
	}
	return err
}
