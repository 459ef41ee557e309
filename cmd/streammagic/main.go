// Streammagic is a command-line remote for Cambridge Audio StreamMagic
// streamers.
//
// It talks to the device's SMOIP HTTP control API to read identity, sources
// and zone state, and to change power, volume, mute and source. Devices can be
// saved under short names in the configuration file.
//
// Usage:
//
//	streammagic [command] [flags]
//
// See 'streammagic --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/streammagic/internal/config"
	"github.com/muurk/streammagic/internal/logging"
	"github.com/muurk/streammagic/internal/trace"
	"github.com/muurk/streammagic/internal/ui"
	"github.com/muurk/streammagic/internal/version"
	"github.com/muurk/streammagic/pkg/streammagic"
)

// Global flags
var (
	deviceFlag   string
	timeout      time.Duration
	retries      int
	outputFormat string
	logLevel     string
	tracePath    string
	configPath   string
)

var (
	recorder *trace.FileRecorder

	registry     *config.Registry
	registryErr  error
	registryOnce sync.Once
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	stop()
	closeRecorder()
	logging.Sync()

	if err != nil {
		title := "streammagic"
		if cmd != nil {
			title = cmd.CommandPath()
		}
		ui.PrintError(os.Stderr, title, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "streammagic",
	Short: "StreamMagic network streamer remote",
	Long: `A command-line remote for Cambridge Audio StreamMagic streamers.

Reads device information, sources and zone state, and controls power,
volume, mute and source selection over the SMOIP HTTP control API.

The device is given with --device as an IP address, host:port, or the name
of a device saved with 'streammagic device add'.`,
	Version:           version.Version,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&deviceFlag, "device", "d", "", "Device host, host:port or saved device name (default: configured default device)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Timeout for each command, retries included (default: from config, 100s)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "Total attempts for retryable failures (default: from config, 1)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	rootCmd.PersistentFlags().StringVar(&tracePath, "trace", "", "Append every request to this trace file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (.yaml or .toml)")

	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	switch outputFormat {
	case "detailed", "compact", "json":
	default:
		return fmt.Errorf("unknown output format %q (want detailed, compact or json)", outputFormat)
	}

	if tracePath != "" {
		rec, err := trace.NewFileRecorder(tracePath)
		if err != nil {
			return fmt.Errorf("failed to open trace file: %w", err)
		}
		recorder = rec
	}
	return nil
}

func closeRecorder() {
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close trace file: %v\n", err)
		}
	}
}

// loadRegistry reads the configuration file once per run
func loadRegistry() (*config.Registry, error) {
	registryOnce.Do(func() {
		registry, registryErr = config.Load(configPath)
	})
	return registry, registryErr
}

func saveRegistry(reg *config.Registry) error {
	if configPath != "" {
		return reg.SaveFile(configPath)
	}
	return reg.Save()
}

// openClient resolves --device and builds a client using the flag values,
// falling back to the configured preferences.
func openClient() (*streammagic.Client, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	host, err := reg.ResolveHost(deviceFlag)
	if err != nil {
		return nil, fmt.Errorf("%w; use --device or 'streammagic device add --default'", err)
	}

	opts := []streammagic.Option{
		streammagic.WithTimeout(effectiveTimeout(reg.Preferences)),
		streammagic.WithLogger(logging.GetLogger().Named("streammagic")),
	}
	if attempts := effectiveRetries(reg.Preferences); attempts > 1 {
		policy := streammagic.DefaultRetryPolicy()
		policy.Attempts = attempts
		opts = append(opts, streammagic.WithRetry(policy))
	}
	if recorder != nil {
		opts = append(opts, streammagic.WithTracer(recorder))
	}

	return streammagic.NewClient(host, opts...)
}

func effectiveTimeout(prefs *config.Preferences) time.Duration {
	if timeout > 0 {
		return timeout
	}
	if prefs != nil && prefs.TimeoutSeconds > 0 {
		return time.Duration(prefs.TimeoutSeconds) * time.Second
	}
	return streammagic.DefaultTimeout
}

func effectiveRetries(prefs *config.Preferences) int {
	if retries > 0 {
		return retries
	}
	if prefs != nil && prefs.RetryAttempts > 0 {
		return prefs.RetryAttempts
	}
	return 1
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("streammagic %s (commit: %s)\n", version.Version, version.Commit)
		fmt.Printf("User-Agent: %s\n", version.UserAgent())
	},
}
