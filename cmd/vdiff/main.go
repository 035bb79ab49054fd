package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
          _ _  __  __
  __   __| (_)/ _|/ _|
  \ \ / / _' | | |_| |_
   \ V / (_| | |  _|  _|
    \_/ \__,_|_|_| |_|
`

// noColor is set by the --no-color flag.
var noColor bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "vdiff",
		Short: "Diff virtual DOM trees into patch scripts",
		Long: `vdiff computes the minimal patch script that turns one tree into
another, and applies, renders and serves them.

Trees are read from JSON, YAML or HTML files:

  • diff     print the patch script between two trees
  • apply    apply a patch script to a live tree and verify it
  • render   render a tree as HTML
  • serve    run the diff API and websocket patch stream`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || !isTerminal(os.Stderr) {
				errors.DisableColors()
			}
			setupLogging(cmd.ErrOrStderr(), verbose, "text")
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		diffCmd(),
		applyCmd(),
		renderCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// setupLogging installs the default slog logger. format is "text" or
// "json".
func setupLogging(w io.Writer, verbose bool, format string) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	setupLoggingLevel(w, level, format)
}

func setupLoggingLevel(w io.Writer, level slog.Level, format string) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
