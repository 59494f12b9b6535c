// Package cli holds the tilebot commands: the web server and a terminal
// rendition of the same conversation.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lojasmm/tilebot/internal/config"
	"github.com/lojasmm/tilebot/internal/logging"
	"github.com/lojasmm/tilebot/internal/pacing"
)

var flagLogLevel string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tilebot",
		Short:         "Scripted tile estimate assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return logging.New(level)
}

func timingsFrom(cfg *config.Config) pacing.Timings {
	return pacing.Timings{
		Typing:  cfg.TypingDelay,
		Reveal:  cfg.RevealDelay,
		Summary: cfg.SummaryDelay,
	}
}
