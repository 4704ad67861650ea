package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/mediclaim/internal/config"
	mlog "github.com/nao1215/mediclaim/internal/log"
)

// Log output formats accepted by --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// NewRootCmd creates the root command for mediclaim.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mediclaim",
		Short: "Analyze discharge documents for insurance claim packaging",
		Long: `mediclaim submits a hospital discharge document to a MediClaim analysis
service and shows the extracted diagnoses and procedures, the recommended
insurance packages, a confidence score and any claim risk flags.

The service address is taken from --api-url, then the MEDICLAIM_API_URL
environment variable, then api_url in the configuration file, and finally
defaults to ` + config.DefaultAPIURL + `.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", logFormatText, "Log format: text or json")
	cmd.PersistentFlags().String("api-url", "",
		"Base URL of the analysis service (default "+config.DefaultAPIURL+")")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .mediclaim in current or home directory)")
	cmd.PersistentFlags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for a single request to the service")
	cmd.PersistentFlags().String("proxy", "",
		"SOCKS5 proxy address in host:port form")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHealthCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds a Config from defaults, the config file, the environment
// and the global flags. Later sources win; a flag only counts when it was set
// explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist. Without one, a missing file is fine.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.ApplyEnv()

	if flags.Changed("api-url") {
		if cfg.APIURL, err = flags.GetString("api-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}

	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return nil, err
	}
	switch logFormat {
	case logFormatText:
	case logFormatJSON:
		cfg.JSONLogs = true
	default:
		return nil, fmt.Errorf("unknown log format %q (use %s or %s)", logFormat, logFormatText, logFormatJSON)
	}

	return cfg, nil
}

// setupLogger creates the redacting logger on the command's stderr and makes
// it the default.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger := mlog.New(cmd.ErrOrStderr(), cfg.Verbose, cfg.JSONLogs)
	slog.SetDefault(logger)
	return logger
}
