package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/bizdesk/internal/config"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootOpts struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	o := &rootOpts{}
	root := &cobra.Command{
		Use:           "bizdesk",
		Short:         "Identity and access core for the bizdesk backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "YAML config file (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&o.envFile, "env-file", ".env", "dotenv file loaded before reading config")

	root.AddCommand(newServeCmd(o), newMigrateCmd(o), newAdminCmd(o))
	return root
}

// load lee .env (si existe), la config y arranca el logger.
func (o *rootOpts) load() (*config.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.App.Version == "" {
		cfg.App.Version = version
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	return cfg, nil
}
