package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/overengineeringstudio/inkline/pkg/flexbox"
	"github.com/overengineeringstudio/inkline/pkg/inkline"
	"github.com/overengineeringstudio/inkline/pkg/ioctx"
)

// stepEvent is one unit of simulated progress.
type stepEvent struct {
	Task  string `json:"task"`
	Step  int    `json:"step"`
	Total int    `json:"total"`
	Done  bool   `json:"done"`
}

func run(ctx context.Context, cfg Config) error {
	logger := newLogger(cfg)
	prof, err := loadProfile(cfg.Profile)
	if err != nil {
		return err
	}

	env := inkline.DetectEnvironment(os.Stdout, nil)
	mode := inkline.ResolveOutputMode(inkline.Flags{
		JSON:        cfg.JSON,
		Stream:      cfg.Stream,
		ForceVisual: cfg.ForceVisual,
		Final:       cfg.Final,
		NoColor:     cfg.NoColor || prof.NoColor,
	}, env)
	logger.Debug("resolved output mode",
		"mode", mode.Kind.String(),
		"animate", mode.Config.Animate,
		"colors", mode.Config.Colors)

	tasks := make([]string, cfg.Tasks)
	for i := range tasks {
		tasks[i] = fmt.Sprintf("task-%d", i+1)
	}

	switch mode.Kind {
	case inkline.ReactProgressive:
		return runLive(ctx, cfg, prof, mode, tasks)
	case inkline.ReactFinal:
		return runFinal(ctx, mode, tasks)
	case inkline.JSONFinal:
		return runJSONFinal(ctx, mode, tasks)
	case inkline.JSONProgressive:
		return runJSONStream(ctx, tasks)
	default:
		return fmt.Errorf("unhandled output mode %s", mode.Kind)
	}
}

// ── view ─────────────────────────────────────────────────────────────────────

var (
	headerStyle = inkline.TextStyle{Color: "212", Bold: true}
	okStyle     = inkline.TextStyle{Color: "10"}
	failStyle   = inkline.TextStyle{Color: "9", Bold: true}
	dimStyle    = inkline.TextStyle{Dim: true}
)

// view owns the demo's scene tree: an append-only log of completed work
// above a live status box with one line per task.
type view struct {
	tree   *inkline.Tree
	log    *inkline.Node
	header *inkline.Node
	byTask map[string]*inkline.Node
}

func newView(tasks []string) *view {
	v := &view{
		log:    inkline.NewStatic(),
		header: inkline.NewText(headerStyle, "working"),
		byTask: make(map[string]*inkline.Node),
	}
	status := inkline.NewBox(inkline.BoxProps{
		Direction: inkline.DirColumn,
		Padding:   inkline.Padding{Left: 2},
	})
	for _, name := range tasks {
		line := inkline.NewText(dimStyle, name+" waiting")
		line.Key = name
		v.byTask[name] = line
		status.AppendChild(line)
	}
	root := inkline.NewBox(inkline.BoxProps{Direction: inkline.DirColumn},
		v.log, v.header, status)
	v.tree = inkline.NewTree(root)
	return v
}

func (v *view) apply(ev stepEvent) {
	if ev.Done {
		v.byTask[ev.Task].SetStyle(okStyle)
		v.byTask[ev.Task].SetText(ev.Task + " done")
		v.log.AppendChild(inkline.NewText(okStyle,
			fmt.Sprintf("✓ %s finished (%d steps)", ev.Task, ev.Total)))
		return
	}
	v.byTask[ev.Task].SetStyle(inkline.TextStyle{})
	v.byTask[ev.Task].SetText(fmt.Sprintf("%s [%d/%d]", ev.Task, ev.Step, ev.Total))
}

func (v *view) setHeader(glyph, text string) {
	if glyph != "" {
		text = glyph + " " + text
	}
	v.header.SetText(text)
}

// ── workload ─────────────────────────────────────────────────────────────────

// produce runs the simulated tasks concurrently, emitting step events
// until done or the context is cancelled. The returned channel closes
// when every producer has exited.
func produce(ctx context.Context, tasks []string) <-chan stepEvent {
	events := make(chan stepEvent, 64)
	eg, ctx := errgroup.WithContext(ctx)
	for _, name := range tasks {
		eg.Go(func() error {
			total := 3 + rand.Intn(4)
			for step := 1; step <= total; step++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(40+rand.Intn(80)) * time.Millisecond):
				}
				events <- stepEvent{Task: name, Step: step, Total: total}
			}
			events <- stepEvent{Task: name, Total: total, Done: true}
			return nil
		})
	}
	go func() {
		_ = eg.Wait()
		close(events)
	}()
	return events
}

// ── live progressive mode ────────────────────────────────────────────────────

func runLive(ctx context.Context, cfg Config, prof Profile, mode inkline.OutputMode, tasks []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []inkline.Option{
		inkline.WithThrottle(time.Duration(prof.ThrottleMS) * time.Millisecond),
		inkline.WithLogger(newLogger(cfg)),
	}
	if prof.StaticCap > 0 {
		opts = append(opts, inkline.WithStaticCap(prof.StaticCap))
	}
	if cfg.DebugLog != "" {
		f, err := os.OpenFile(cfg.DebugLog, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close() //nolint:errcheck
		opts = append(opts, inkline.WithDebugWriter(f))
	}

	term := inkline.NewProcessTerminal(os.Stdout)
	root := inkline.NewRoot(term, flexbox.New(), mode, opts...)
	v := newView(tasks)
	sp := inkline.NewSpinner(root)

	root.SetInterruptHandler(func() {
		v.setHeader("", "interrupted")
		v.header.SetStyle(failStyle)
		v.log.AppendChild(inkline.NewText(failStyle, "✗ interrupted before completion"))
		v.tree.Commit()
	})

	if err := root.Start(); err != nil {
		return fmt.Errorf("start renderer: %w", err)
	}
	sp.Start()
	v.setHeader(sp.Frame(), "working")
	v.tree.Commit()
	root.Render(v.tree)

	events := produce(ctx, tasks)
	frame := time.NewTicker(80 * time.Millisecond)
	defer frame.Stop()

	interrupted := false
loop:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			v.apply(ev)
			v.tree.Commit()
			root.Render(v.tree)
		case <-frame.C:
			v.setHeader(sp.Frame(), "working")
			v.tree.Commit()
			root.Render(v.tree)
		case <-ctx.Done():
			interrupted = true
			break loop
		}
	}
	sp.Stop()

	if interrupted {
		root.Interrupt()
	} else {
		v.setHeader("", "all tasks complete")
		v.header.SetStyle(okStyle)
		v.tree.Commit()
		root.Render(v.tree)
	}
	root.Unmount(inkline.UnmountPersist)
	return nil
}

// ── final modes ──────────────────────────────────────────────────────────────

// drain runs the workload to completion (or cancellation) without
// rendering, applying every event to the view.
func drain(ctx context.Context, v *view, tasks []string) {
	for ev := range produce(ctx, tasks) {
		v.apply(ev)
	}
	v.tree.Commit()
}

func runFinal(ctx context.Context, mode inkline.OutputMode, tasks []string) error {
	v := newView(tasks)
	drain(ctx, v, tasks)
	v.setHeader("", "all tasks complete")

	root := inkline.NewRoot(inkline.NewProcessTerminal(os.Stdout), flexbox.New(), mode)
	root.Render(v.tree)
	root.Unmount(inkline.UnmountPersist)
	return nil
}

func runJSONFinal(ctx context.Context, mode inkline.OutputMode, tasks []string) error {
	v := newView(tasks)
	drain(ctx, v, tasks)
	v.setHeader("", "all tasks complete")

	root := inkline.NewRoot(inkline.NewProcessTerminal(os.Stdout), flexbox.New(), mode)
	root.Render(v.tree)
	frame, err := root.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := inkline.EncodeFrame(ioctx.StdoutFromContext(ctx), frame); err != nil {
		return err
	}
	root.Unmount(inkline.UnmountPersist)
	return nil
}

func runJSONStream(ctx context.Context, tasks []string) error {
	emitter := inkline.NewStreamEmitter(ioctx.StdoutFromContext(ctx))
	done := 0
	for ev := range produce(ctx, tasks) {
		name := "step"
		if ev.Done {
			name = "task-done"
			done++
		}
		if err := emitter.Emit(name, ev); err != nil {
			return err
		}
	}
	return emitter.Emit("complete", map[string]int{"tasks": done})
}
