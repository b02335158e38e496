package main

import (
	"os"

	"github.com/deppfellow/go-insurance/internal/config"
	"github.com/deppfellow/go-insurance/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "insurance",
	Short: "Insurance claims API",
	Long:  `Serves the insurance HTTP API and manages its database schema.`,
	// Usage is noise on runtime failures; errors are logged instead.
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the application logger.
// Failures here are fatal: without config there is nothing to log with.
func bootstrap() (*config.Config, *zerolog.Logger, *logger.LoggerService) {
	cfg, err := config.LoadConfig()
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("failed to initialize new relic")
	}

	log := logger.NewLogger(cfg.Observability, loggerService)
	return cfg, &log, loggerService
}
