package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/igolaizola/lyricsmith/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger = zap.NewNop()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lyricsmith",
		Short: "Generate structured song lyrics section by section",
		Long: `lyricsmith builds a song from a structure expression such as
"VERSE(speransky) > CHORUS(alekhin) > OUTRO(alekhin)".

Every section is sampled several times from a text-generation model, the
candidates are filtered and scored, and the best one is kept. Previous
sections are passed as context so the song stays coherent without copying
itself.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default "+config.DefaultPath+" when present)")

	cmd.AddCommand(newGenerateCmd(), newCleanCmd(), newPlanCmd())
	return cmd
}

// loadConfig reads the config file named by --config, or the default file
// when it exists.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			path = config.DefaultPath
		}
	}
	return config.Load(path)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
