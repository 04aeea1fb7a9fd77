package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/app"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
)

var (
	// Command-line flags
	configFiles []string // Multiple -c flags supported
	logLevel    string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "oferta",
	Short: "Technical proposal generator for photovoltaic tenders",
	Long: `Oferta generates sections of the technical proposal (Propunerea Tehnica) for
photovoltaic construction tenders. Source PDFs are read locally or from Creatio,
the text is sent to an LLM and the result is rendered as a PDF document.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides config")

	rootCmd.AddCommand(serveCmd, generateCmd, creatioCmd, versionCmd)
}

func main() {
	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Eroare: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig runs the startup sequence shared by every command:
// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
// 2. Apply CLI overrides
// 3. Initialize logger
func loadConfig(cmd *cobra.Command, args []string) error {
	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("oferta.toml"); err == nil {
			configFiles = append(configFiles, "oferta.toml")
		} else if _, err := os.Stat("deployments/local/oferta.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/oferta.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevel != "" {
		config.Logging.Level = logLevel
	}

	logger = common.SetupLogger(config)
	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")

	return nil
}

// newApp initializes the application after command-specific overrides are applied
func newApp() (*app.App, error) {
	application, err := app.New(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}
