// Package inkline implements a terminal rendering engine that turns a
// retained scene tree into correctly laid-out, flicker-free, non-scrolling
// terminal output. An append-only static log interleaves with a
// continuously replaced dynamic status region on the normal scrollback
// buffer (no alternate screen); synchronized output prevents flickering.
//
// Output targets (live redraw, one-shot render, structured JSON, streaming
// JSON) are selected from flags and environment context by
// ResolveOutputMode and consumed once per session by the Root scheduler.
package inkline

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// Terminal abstracts terminal I/O so the engine can be tested with a fake
// terminal. Input handling is deliberately absent: the engine only writes.
type Terminal interface {
	// Start begins listening for resize notifications. onResize is called
	// when the terminal dimensions change.
	Start(onResize func()) error

	// Stop releases the resize listener.
	Stop()

	// Write sends raw bytes to the terminal.
	Write(p []byte)

	// WriteString sends a string to the terminal.
	WriteString(s string)

	// Columns returns the current terminal width.
	Columns() int

	// Rows returns the current terminal height.
	Rows() int

	// Interactive reports whether the output is a real terminal.
	Interactive() bool

	// HideCursor hides the hardware cursor.
	HideCursor()

	// ShowCursor shows the hardware cursor.
	ShowCursor()
}

// ProcessTerminal is a Terminal backed by an *os.File (normally stdout).
// Terminal dimensions are cached and refreshed on SIGWINCH to avoid
// repeated ioctl syscalls during rendering.
type ProcessTerminal struct {
	out        *os.File
	onResize   func()
	sigCh      chan os.Signal
	stopCtx    context.Context
	stopCancel context.CancelFunc

	sizeMu sync.RWMutex
	cols   int
	rows   int
}

// NewProcessTerminal creates a terminal writing to out. A nil out means
// os.Stdout.
func NewProcessTerminal(out *os.File) *ProcessTerminal {
	if out == nil {
		out = os.Stdout
	}
	return &ProcessTerminal{out: out}
}

func (t *ProcessTerminal) Start(onResize func()) error {
	t.onResize = onResize
	t.stopCtx, t.stopCancel = context.WithCancel(context.Background())

	// Cache initial terminal size.
	t.refreshSize()

	// Listen for SIGWINCH.
	t.sigCh = make(chan os.Signal, 1)
	signal.Notify(t.sigCh, syscall.SIGWINCH)
	go func() {
		for {
			select {
			case <-t.sigCh:
				t.refreshSize()
				if t.onResize != nil {
					t.onResize()
				}
			case <-t.stopCtx.Done():
				return
			}
		}
	}()

	return nil
}

func (t *ProcessTerminal) Stop() {
	if t.stopCancel != nil {
		t.stopCancel()
	}
	if t.sigCh != nil {
		signal.Stop(t.sigCh)
	}
}

func (t *ProcessTerminal) Write(p []byte) {
	_, _ = t.out.Write(p)
}

func (t *ProcessTerminal) WriteString(s string) {
	_, _ = io.WriteString(t.out, s)
}

func (t *ProcessTerminal) Columns() int {
	t.sizeMu.RLock()
	c := t.cols
	t.sizeMu.RUnlock()
	if c == 0 {
		return 80
	}
	return c
}

func (t *ProcessTerminal) Rows() int {
	t.sizeMu.RLock()
	r := t.rows
	t.sizeMu.RUnlock()
	if r == 0 {
		return 24
	}
	return r
}

func (t *ProcessTerminal) Interactive() bool {
	return isatty.IsTerminal(t.out.Fd()) || isatty.IsCygwinTerminal(t.out.Fd())
}

// refreshSize queries the kernel for current terminal dimensions and
// caches them. Called once at Start and on every SIGWINCH.
func (t *ProcessTerminal) refreshSize() {
	ws, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return
	}
	t.sizeMu.Lock()
	if ws.Col > 0 {
		t.cols = int(ws.Col)
	}
	if ws.Row > 0 {
		t.rows = int(ws.Row)
	}
	t.sizeMu.Unlock()
}

func (t *ProcessTerminal) HideCursor() {
	t.WriteString("\x1b[?25l")
}

func (t *ProcessTerminal) ShowCursor() {
	t.WriteString("\x1b[?25h")
}
