package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/padkit/padkit/internal/configpaths"
	"github.com/padkit/padkit/internal/hub"
	"github.com/padkit/padkit/internal/hub/auth"
	"github.com/padkit/padkit/internal/hub/handler"
	"github.com/padkit/padkit/internal/log"
)

const keyFileName = "padkit.key.txt"

// Serve runs the event hub: it decodes the connected controller like monitor
// and streams the events to TCP clients.
type Serve struct {
	Monitor  Monitor `embed:""`
	Addr     string  `help:"Hub listen address" default:"127.0.0.1:27532" env:"PADKIT_ADDR"`
	Password string  `help:"Hub password (generated into the key file when empty)" env:"PADKIT_PASSWORD"`
	NoAuth   bool    `help:"Serve without authentication or encryption" env:"PADKIT_NO_AUTH"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	password := s.Password
	if password == "" && !s.NoAuth {
		var err error
		password, err = loadOrCreateKey(logger)
		if err != nil {
			return err
		}
	}

	hubSrv := hub.New(hub.Config{Addr: s.Addr, Password: password}, logger)
	r := hubSrv.Router()
	r.Register("ping", handler.Ping(Version))
	r.Register("devices/types", handler.DeviceTypes())
	r.RegisterStream("events", hubSrv.Broadcaster().EventStream())

	if err := hubSrv.Start(); err != nil {
		return fmt.Errorf("start hub: %w", err)
	}
	defer hubSrv.Close()

	return s.Monitor.RunSession(ctx, logger, rawLogger, hubSrv.Broadcaster())
}

// loadOrCreateKey reads the hub password from the key file, generating and
// persisting a fresh one on first run.
func loadOrCreateKey(logger *slog.Logger) (string, error) {
	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := path.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		return strings.TrimSpace(string(pwd)), nil
	}

	newPwd, err := auth.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate hub password: %w", err)
	}
	if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
		return "", fmt.Errorf("failed to write hub password to file: %w", err)
	}
	logger.Info("Generated hub password", "path", keyFilePath)
	logger.Info("-------------------------------------")
	logger.Info("Your padkit hub password is:")
	logger.Info("-------------------------------------")
	logger.Info(newPwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return newPwd, nil
}
