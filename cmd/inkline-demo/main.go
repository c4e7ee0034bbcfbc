// Command inkline-demo runs a simulated multi-task workload through the
// inkline rendering engine, exercising every output mode: live redraw on
// a terminal, one-shot render on file redirect, and structured JSON when
// piped, forced, or driven by an automated agent.
//
// Usage:
//
//	go run ./cmd/inkline-demo
//	go run ./cmd/inkline-demo --tasks 8
//	go run ./cmd/inkline-demo --json --stream
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/fang"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/overengineeringstudio/inkline/pkg/ioctx"
)

// Config holds the demo configuration.
type Config struct {
	JSON        bool
	Stream      bool
	ForceVisual bool
	Final       bool
	NoColor     bool
	Debug       bool
	DebugLog    string
	Tasks       int
	Profile     string
}

// Profile is the optional TOML render profile.
type Profile struct {
	ThrottleMS int  `toml:"throttle_ms"`
	StaticCap  int  `toml:"static_cap"`
	NoColor    bool `toml:"no_color"`
}

func loadProfile(path string) (Profile, error) {
	p := Profile{ThrottleMS: 16}
	if path == "" {
		return p, nil
	}
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return p, fmt.Errorf("load profile %s: %w", path, err)
	}
	return p, nil
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "inkline-demo",
		Short: "Exercise the inkline rendering engine",
		Long: `inkline-demo simulates a concurrent multi-task workload and renders
its progress through the inkline engine. The output mode is resolved from
flags and environment context: interactive terminals get a live status
region over an append-only log, file redirects get a single final render,
and pipes or agent sessions get structured JSON.`,
		Example: `  # Live progressive rendering on a terminal
  inkline-demo

  # Structured JSON, one document at completion
  inkline-demo --json

  # Streaming JSONL events
  inkline-demo --json --stream

  # Force the one-shot visual render
  inkline-demo --final`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().BoolVar(&cfg.JSON, "json", false, "Emit structured JSON output")
	rootCmd.Flags().BoolVar(&cfg.Stream, "stream", false, "With --json, stream JSONL events")
	rootCmd.Flags().BoolVar(&cfg.ForceVisual, "force-visual", false, "Force live visual rendering")
	rootCmd.Flags().BoolVar(&cfg.Final, "final", false, "Force the one-shot visual render")
	rootCmd.Flags().BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&cfg.DebugLog, "debug-log", "", "Write per-frame writer stats (JSONL) to this file")
	rootCmd.Flags().IntVar(&cfg.Tasks, "tasks", 4, "Number of simulated tasks")
	rootCmd.Flags().StringVar(&cfg.Profile, "profile", "", "Path to a TOML render profile")

	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the diagnostic logger. Frame errors and lifecycle
// events go to stderr so they never corrupt the rendered output stream.
func newLogger(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}
