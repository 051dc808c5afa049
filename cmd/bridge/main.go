package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bridge/internal/config"
	"bridge/internal/loader"
	"bridge/internal/logging"
	"bridge/internal/source"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "BRIDGE - build case report forms from the ARC catalogue",
	Long: `bridge turns a selection of ARC variables into a REDCap data dictionary,
a paper-form layout, a completion guide and a configuration bundle.

The catalogue is read from the ARC GitHub repository, a local mirror or an
S3 mirror. Set BRIDGE_ENV=development to read the main branch instead of
release tags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logCfg := cfg.Logging.ToLogging()
		if verbose {
			logCfg.DebugMode = true
		}
		if err := logging.Initialize(logCfg); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.BootDebug("config %s: source mode %s", configPath, cfg.Source.Mode)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "bridge.yaml", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(guideCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext returns a context bounded by --timeout and cancelled on
// SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// openLoader opens the configured source. The returned handle must be
// closed by the caller.
func openLoader(ctx context.Context) (*loader.Loader, *source.Handle, error) {
	h, err := source.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return loader.New(h.Source, cfg.Source.Parallelism), h, nil
}
