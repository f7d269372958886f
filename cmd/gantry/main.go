package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gantry/internal/version"
)

// CLI exit codes. Cobra usage failures map to exitUsage in main.
var (
	errValidationFailed = errors.New("validation failed")
	errIO               = errors.New("io failure")
)

const (
	exitOK         = 0
	exitValidation = 1
	exitUsage      = 2
	exitIO         = 3
)

var rootCmd = &cobra.Command{
	Use:   "gantry [path]",
	Short: "Workflow file validator and toolkit",
	Long:  `Gantry validates CI workflow YAML files: structure, job graph, steps, expressions.`,
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare `gantry <path>` keeps the original summary behavior;
		// everything richer lives under `gantry validate`.
		if len(args) == 0 {
			return cmd.Help()
		}
		if len(args) > 1 {
			return fmt.Errorf("expected a single workflow path, got %d", len(args))
		}
		return runLegacySummary(cmd, args[0])
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("verbose", false, "log operational detail to stderr")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	cobra.OnInitialize(func() {
		applyColorMode()
		configureLogging()
	})

	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, errValidationFailed):
			os.Exit(exitValidation)
		case errors.Is(err, errIO):
			os.Exit(exitIO)
		default:
			os.Exit(exitUsage)
		}
	}
	os.Exit(exitOK)
}

// applyColorMode resolves the --color tri-state before any output.
func applyColorMode() {
	mode, err := rootCmd.PersistentFlags().GetString("color")
	if err != nil {
		return
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}

// configureLogging routes slog to stderr; --verbose raises to debug.
func configureLogging() {
	level := slog.LevelWarn
	if verbose, err := rootCmd.PersistentFlags().GetBool("verbose"); err == nil && verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
