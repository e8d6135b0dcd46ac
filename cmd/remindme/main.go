package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/4thel00z/remindme/internal"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	a := newApp()
	defer a.Close()

	rootCmd := NewRootCmd(version, a)
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

// app builds the service graph on first use so that --config is honoured.
type app struct {
	svc  *internal.Services
	opts []internal.ServiceOption
}

func newApp(opts ...internal.ServiceOption) *app {
	return &app{opts: opts}
}

// newAppWith wraps an already wired service graph.
func newAppWith(svc *internal.Services) *app {
	return &app{svc: svc}
}

func (a *app) services(cmd *cobra.Command) (*internal.Services, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, err := internal.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("open logs: %w", err)
	}

	opts := a.opts
	if configPath != "" {
		opts = append(opts, internal.WithDaemonArgs("--config", configPath))
	}

	svc, err := internal.NewServices(cmd.Context(), cfg, log, opts...)
	if err != nil {
		log.Close()
		return nil, err
	}
	a.svc = svc
	return svc, nil
}

func (a *app) Close() error {
	if a.svc == nil {
		return nil
	}
	return a.svc.Close()
}

// loadConfig reads the configuration, then reads it again if <dir>/.env supplied variables.
func loadConfig(path string) (*internal.Config, error) {
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := godotenv.Load(cfg.EnvPath()); err == nil {
		if cfg, err = internal.LoadConfig(path); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", cfg.EnvPath(), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
