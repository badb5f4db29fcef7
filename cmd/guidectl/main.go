// Command guidectl runs the guide's calculator and income classifier from the
// terminal and prints curriculum topics.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"econguide/internal/backend"
	"econguide/internal/cli"
	"econguide/internal/config"
	"econguide/internal/log"
)

// errFailed marks a failure that was already reported to the user.
var errFailed = errors.New("failed")

type options struct {
	backend string
	json    bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "guidectl",
		Short: "Julia for economists, from the terminal",
		Long: `guidectl evaluates the guide's operators, classifies a monthly budget
and prints curriculum topics.

Negative operands must follow "--", e.g.:
  guidectl eval -- -7 // 2`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Content backend, one of "+strings.Join(backend.GetBackendTypeStrings(), ", ")+" (default: CONTENT_BACKEND)")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(
		newEvalCmd(opts),
		newClassifyCmd(opts),
		newTopicsCmd(opts),
		newTopicCmd(opts),
	)
	return rootCmd
}

// logger writes to stderr so command output stays parseable.
func (o *options) logger(w io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = w
	cfg.Component = log.ComponentCLI
	cfg.Level = slog.LevelWarn
	if o.verbose {
		cfg.Level = slog.LevelDebug
	}
	return log.New(cfg)
}

func (o *options) config() *config.Config {
	cfg := config.Load()
	if o.backend != "" {
		cfg.ContentBackend = o.backend
	}
	return cfg
}

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
