// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

// Command provisionr serves the template provisioning HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sam-ruff/provisionr/internal/config"
	"github.com/sam-ruff/provisionr/internal/httpapi"
	"github.com/sam-ruff/provisionr/internal/logging"
	"github.com/sam-ruff/provisionr/internal/provisionr"
	"github.com/sam-ruff/provisionr/internal/server"
	accesslog "github.com/sam-ruff/provisionr/internal/server/middleware/logger"
)

// envPrefix is the environment variable prefix for configuration overrides,
// e.g. PROVISIONR__SERVER__PORT.
const envPrefix = "PROVISIONR"

// flagMappings maps CLI flag names to their dotted config key, used by
// config.Loader.LoadFlags to apply only flags the caller explicitly set.
var flagMappings = map[string]string{
	"port":      "server.port",
	"db":        "database.path",
	"log-level": "logging.level",
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "provisionr",
		Short:         "Provisionr renders text artifacts from stored templates and per-identity secrets.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	defaults := provisionr.DefaultConfig()
	serveCmd.Flags().Int("port", defaults.Server.Port, "HTTP listen port")
	serveCmd.Flags().String("db", defaults.Database.Path, "path to the rendered-artifact SQLite database")
	serveCmd.Flags().String("log-level", defaults.Logging.Level, "log level (debug, info, warn, error)")

	dumpConfigCmd := &cobra.Command{
		Use:   "dump-config",
		Short: "Print the fully merged configuration as YAML and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(configPath)
		},
	}

	root.AddCommand(serveCmd, dumpConfigCmd)
	return root
}

// newLoader builds the layered loader shared by serve and dump-config.
func newLoader(configPath string) (*config.Loader, error) {
	loader := config.NewLoader(envPrefix)
	if err := loader.LoadWithDefaults(provisionr.DefaultConfig(), configPath); err != nil {
		return nil, err
	}
	return loader, nil
}

// loadConfig merges defaults, an optional config file, environment
// variables, and explicitly-set CLI flags into a validated Config.
func loadConfig(configPath string, flags *pflag.FlagSet) (provisionr.Config, error) {
	loader, err := newLoader(configPath)
	if err != nil {
		return provisionr.Config{}, err
	}
	if err := loader.LoadFlags(flags, flagMappings); err != nil {
		return provisionr.Config{}, err
	}

	var cfg provisionr.Config
	if err := loader.UnmarshalAndValidate("", &cfg); err != nil {
		return provisionr.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func dumpConfig(configPath string) error {
	loader, err := newLoader(configPath)
	if err != nil {
		return err
	}
	return loader.DumpYAML(os.Stdout)
}

// runServe wires the Template Store, Rendered Catalogue, Commander, and
// Dispatcher together, runs the dispatcher's single consumer goroutine,
// and serves the HTTP API until the process receives a termination signal.
func runServe(ctx context.Context, cfg provisionr.Config) error {
	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogue, err := provisionr.OpenRenderedCatalogue(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening rendered catalogue: %w", err)
	}
	defer func() {
		if err := catalogue.Close(); err != nil {
			logger.Warn("error closing rendered catalogue", "error", err)
		}
	}()

	commander := provisionr.NewCommander(provisionr.NewGoTemplateEngine())
	store := provisionr.NewTemplateStore()
	if err := provisionr.PreloadTemplates(store, commander, cfg.Templates); err != nil {
		return fmt.Errorf("invalid preload: %w", err)
	}
	dispatcher := provisionr.NewDispatcher(commander, store, catalogue, logger, cfg.Dispatcher.QueueCapacity)

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()

	api := httpapi.New(dispatcher, logger, provisionr.DefaultReplyTimeout)
	handler := api.Routes(accesslog.Middleware(logger))

	srv := server.New(server.Config{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
	}, handler, logger)

	err = srv.Run(ctx)
	<-dispatcherDone
	return err
}
