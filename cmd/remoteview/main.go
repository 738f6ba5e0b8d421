// Command remoteview drives a loopback remote rendering session through the oxy engine,
// either in a window or headless over an in-memory frame buffer.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	headless   bool
	frames     int
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "remoteview",
		Short:         "View a remote-rendered scene through the oxy engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg.Log, cmd.ErrOrStderr()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if opts.headless {
				stats, err := runHeadless(ctx, cfg, opts.frames)
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), stats)
				return nil
			}
			return runWindowed(ctx, cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "run without a window over an in-memory frame buffer")
	cmd.Flags().IntVar(&opts.frames, "frames", 120, "frames to run in headless mode")

	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout(), config.Format(format))
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.FormatTOML), "output format (toml or yaml)")
	return cmd
}

// loadConfig reads the config file if one was given and applies flag overrides.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
		if _, err := cfg.Log.SlogLevel(); err != nil {
			return config.Config{}, fmt.Errorf("--log-level: %w", err)
		}
	}
	if opts.frames < 0 {
		return config.Config{}, fmt.Errorf("--frames must not be negative, got %d", opts.frames)
	}
	common.Logger().Debug("remoteview: config loaded", "path", opts.configPath)
	return cfg, nil
}
