// Command inkline-stress churns the rendering engine with rapid tree
// mutations to exercise coalescing, throttling, and the differential
// writer under load. Per-frame writer stats are collected as JSONL and a
// summary is printed at exit.
//
// Usage:
//
//	go run ./cmd/inkline-stress
//	go run ./cmd/inkline-stress --duration 10s --rate 200
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/overengineeringstudio/inkline/pkg/flexbox"
	"github.com/overengineeringstudio/inkline/pkg/inkline"
)

func main() {
	var (
		duration  time.Duration
		rate      int
		logLines  int
		statsPath string
	)

	rootCmd := &cobra.Command{
		Use:   "inkline-stress",
		Short: "Stress-test the inkline differential renderer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), duration, rate, logLines, statsPath)
		},
	}
	rootCmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "How long to run")
	rootCmd.Flags().IntVar(&rate, "rate", 100, "Tree mutations per second")
	rootCmd.Flags().IntVar(&logLines, "log-lines", 50, "Static log lines to emit over the run")
	rootCmd.Flags().StringVar(&statsPath, "stats", "", "Also write per-frame stats JSONL to this file")

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion("v0.1.0")); err != nil {
		os.Exit(1)
	}
}

// syncBuffer is a goroutine-safe stats sink: the render loop appends while
// the summary pass reads at exit.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func run(ctx context.Context, duration time.Duration, rate, logLines int, statsPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := &syncBuffer{}
	term := inkline.NewProcessTerminal(os.Stdout)
	env := inkline.DetectEnvironment(os.Stdout, nil)
	mode := inkline.ResolveOutputMode(inkline.Flags{ForceVisual: !env.TTY}, env)
	root := inkline.NewRoot(term, flexbox.New(), mode, inkline.WithDebugWriter(stats))

	log := inkline.NewStatic()
	status := inkline.NewBox(inkline.BoxProps{Padding: inkline.Padding{Left: 2}})
	rows := make([]*inkline.Node, 8)
	for i := range rows {
		rows[i] = inkline.NewText(inkline.TextStyle{}, "")
		status.AppendChild(rows[i])
	}
	tree := inkline.NewTree(inkline.NewBox(inkline.BoxProps{},
		log,
		inkline.NewText(inkline.TextStyle{Bold: true}, "stress"),
		status,
	))

	if err := root.Start(); err != nil {
		return fmt.Errorf("start renderer: %w", err)
	}

	var (
		tick     = time.NewTicker(time.Second / time.Duration(rate))
		deadline = time.After(duration)
		logEvery = duration / time.Duration(max(logLines, 1))
		logTick  = time.NewTicker(max(logEvery, time.Millisecond))
		n        = 0
	)
	defer tick.Stop()
	defer logTick.Stop()

loop:
	for {
		select {
		case <-tick.C:
			n++
			for i, row := range rows {
				row.SetText(fmt.Sprintf("row %d tick %d %s", i, n,
					strings.Repeat("▪", rand.Intn(30))))
			}
			tree.Commit()
			root.Render(tree)
		case <-logTick.C:
			log.AppendChild(inkline.NewText(inkline.TextStyle{Dim: true},
				fmt.Sprintf("checkpoint at tick %d", n)))
			tree.Commit()
			root.Render(tree)
		case <-deadline:
			break loop
		case <-ctx.Done():
			break loop
		}
	}

	root.Unmount(inkline.UnmountClearDynamic)

	if statsPath != "" {
		if err := os.WriteFile(statsPath, stats.Bytes(), 0644); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
	}
	return summarize(os.Stdout, stats.Bytes(), n)
}

// summarize aggregates the per-frame JSONL stats into a human-readable
// report. Mutations far exceeding frames is the point: that gap is the
// coalescing ratio.
func summarize(out *os.File, raw []byte, mutations int) error {
	var (
		frames      int
		fullRedraws int
		totalBytes  int
		totalUs     int64
	)
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		var rec struct {
			WriteUs      int64 `json:"write_us"`
			BytesWritten int   `json:"bytes_written"`
			FullRedraw   bool  `json:"full_redraw"`
		}
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		frames++
		totalBytes += rec.BytesWritten
		totalUs += rec.WriteUs
		if rec.FullRedraw {
			fullRedraws++
		}
	}

	fmt.Fprintf(out, "mutations:    %d\n", mutations)
	fmt.Fprintf(out, "frames:       %d\n", frames)
	if frames > 0 {
		fmt.Fprintf(out, "coalescing:   %.1fx\n", float64(mutations)/float64(frames))
		fmt.Fprintf(out, "full redraws: %d\n", fullRedraws)
		fmt.Fprintf(out, "bytes/frame:  %d\n", totalBytes/frames)
		fmt.Fprintf(out, "write avg:    %dus\n", totalUs/int64(frames))
	}
	return sc.Err()
}
