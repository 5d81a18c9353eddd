package main

import (
	"github.com/spf13/cobra"

	"homesurvey/internal/common/config"
	"homesurvey/internal/common/logger"
)

type rootFlags struct {
	configPath string
	logLevel   string
	baseURL    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "survey-cli",
		Short: "Normalize and inspect HomeSurvey scan results",
		Long: "survey-cli turns raw model replies into dashboard reports, sanitizes\n" +
			"stored report JSON and talks to the scan backend for a signed-in user.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default: configs/config.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.baseURL, "base-url", "", "Base URL for relative image paths")

	root.AddCommand(
		newNormalizeCmd(flags),
		newSanitizeCmd(flags),
		newResolveImageCmd(flags),
		newLoginCmd(flags),
		newScanCmd(flags),
		newHistoryCmd(flags),
		newOpenCmd(flags),
		newShowCmd(flags),
	)
	return root
}

func (f *rootFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFromFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if f.baseURL != "" {
		cfg.API.BaseURL = f.baseURL
	}
	return cfg, nil
}

// logger writes to stderr so command output stays machine readable.
func (f *rootFlags) logger(cfg *config.Config) logger.Logger {
	format := "console"
	if cfg != nil && cfg.Logging.Format != "" {
		format = cfg.Logging.Format
	}
	return logger.NewZapAdapter(logger.NewWithOutput(f.logLevel, format, "stderr"))
}
