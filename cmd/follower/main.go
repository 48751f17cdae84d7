package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LeoDroves/mtga-log-client/internal/config"
	"github.com/LeoDroves/mtga-log-client/internal/logger"
)

var (
	configFile string
	logFile    string
	host       string
	once       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "follower",
		Short: "MTGA log follower",
		Long:  "Follows along a Magic Arena log, parses the messages, and passes along the parsed data to the collection API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				cmd.PrintErrf("Failed to load config: %v\n", err)
				return err
			}
			applyFlagOverrides(cfg)

			log, err := logger.New(cfg.Logging.Level)
			if err != nil {
				cmd.PrintErrf("Failed to init logger: %v\n", err)
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.Errorf("Failed to initialize: %v", err)
				return err
			}

			if err := app.Run(ctx); err != nil && err != context.Canceled {
				log.Errorw("Follower stopped with error", "error", err)
				return err
			}
			log.Info("Shutdown complete")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (optional)")
	rootCmd.Flags().StringVarP(&logFile, "log-file", "l", "", "Log filename to process; autodetected when not specified")
	rootCmd.Flags().StringVar(&host, "host", "", "Host to submit requests to")
	rootCmd.Flags().BoolVar(&once, "once", false, "Stop after parsing the file once instead of waiting for updates")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyFlagOverrides(cfg *config.Config) {
	if logFile != "" {
		cfg.Follower.LogFile = logFile
	}
	if host != "" {
		cfg.API.Host = host
	}
	if once {
		cfg.Follower.Once = true
	}
}
