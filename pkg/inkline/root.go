package inkline

import (
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Viewport is the terminal's current dimensions, updated on resize.
type Viewport struct {
	Columns int
	Rows    int
}

// DefaultThrottle is the minimum interval between two live render passes.
const DefaultThrottle = 16 * time.Millisecond

// Option configures a Root.
type Option func(*Root)

// WithThrottle overrides the minimum interval between live renders.
func WithThrottle(d time.Duration) Option {
	return func(r *Root) { r.interval = d }
}

// WithLogger sets the logger for frame errors. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(r *Root) {
		if l != nil {
			r.log = l
		}
	}
}

// WithStaticCap caps the retained static log buffer.
func WithStaticCap(n int) Option {
	return func(r *Root) { r.staticCap = n }
}

// WithDebugWriter enables per-frame writer stats as JSONL.
func WithDebugWriter(w io.Writer) Option {
	return func(r *Root) { r.debugWriter = w }
}

// Root owns the tree, layout engine, renderer, writer, and all scheduling
// state for one session. Render requests arriving in synchronous bursts
// coalesce into one physical terminal update; a minimum-interval throttle
// bounds the live redraw rate. Only one Root may write to a terminal
// stream at a time.
type Root struct {
	mu sync.Mutex

	term    Terminal
	engine  LayoutEngine
	writer  *Writer
	statics *StaticLog
	rend    *renderer
	mode    OutputMode
	log     *slog.Logger

	tree *Tree
	vp   Viewport

	interval  time.Duration
	lastFrame time.Time
	staticCap int

	renderCh    chan struct{}
	loopStarted bool
	disposed    bool
	interrupted bool
	onInterrupt func()

	debugWriter io.Writer
}

// NewRoot creates a root for the given terminal and resolved output mode
// and, for the live progressive mode, starts the render loop.
func NewRoot(term Terminal, engine LayoutEngine, mode OutputMode, opts ...Option) *Root {
	r := newRoot(term, engine, mode, opts...)
	if mode.Kind == ReactProgressive {
		r.loopStarted = true
		go r.renderLoop()
	}
	return r
}

// newRoot creates a Root without starting the render loop. Used by tests
// that call doRender synchronously.
func newRoot(term Terminal, engine LayoutEngine, mode OutputMode, opts ...Option) *Root {
	r := &Root{
		term:     term,
		engine:   engine,
		mode:     mode,
		log:      slog.New(slog.DiscardHandler),
		interval: DefaultThrottle,
		renderCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.statics = NewStaticLog(r.staticCap)
	r.writer = NewWriter(term)
	r.writer.SetDebugWriter(r.debugWriter)
	r.rend = &renderer{engine: engine, colors: mode.Config.Colors}
	return r
}

// Start begins the session: the terminal starts delivering resize
// notifications and, in the live mode, the cursor is hidden. The other
// modes render only at Unmount, so Start is a no-op for them.
func (r *Root) Start() error {
	if r.mode.Kind != ReactProgressive {
		return nil
	}
	if err := r.term.Start(func() { r.Resize() }); err != nil {
		return err
	}
	r.term.HideCursor()
	r.RequestRender()
	return nil
}

// Mode returns the session's resolved output mode.
func (r *Root) Mode() OutputMode { return r.mode }

// Viewport returns the dimensions observed by the most recent frame, or
// the terminal's current size before any frame has rendered.
func (r *Root) Viewport() Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vp == (Viewport{}) {
		return Viewport{Columns: r.term.Columns(), Rows: r.term.Rows()}
	}
	return r.vp
}

// Render adopts the committed tree and, in progressive visual mode,
// schedules a frame. Final modes record the tree and render at Unmount.
func (r *Root) Render(tree *Tree) {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	r.tree = tree
	r.mu.Unlock()
	if r.mode.Kind == ReactProgressive {
		r.RequestRender()
	}
}

// RequestRender schedules a render. Requests arriving while one is
// pending coalesce into a single frame that observes the latest committed
// tree state.
func (r *Root) RequestRender() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	select {
	case r.renderCh <- struct{}{}:
	default:
	}
}

// Resize is the external notification hook for dimension changes. The
// actual correction happens in the writer's width-change detection on the
// next frame.
func (r *Root) Resize() {
	r.RequestRender()
}

// Interrupt marks the session interrupted. If an interrupt handler is
// installed, Unmount applies it before the final teardown render so the
// last visible frame reflects interrupted status.
func (r *Root) Interrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interrupted = true
}

// SetInterruptHandler installs the consumer's interrupted-state
// transition. The handler runs on the unmounting goroutine and typically
// mutates and commits the tree.
func (r *Root) SetInterruptHandler(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onInterrupt = fn
}

// Flush synchronously drains pending deferred work and performs an
// immediate render, bypassing the throttle. Call before unmount so the
// final frame reflects true final state even if asynchronous producers
// would otherwise race teardown.
func (r *Root) Flush() {
	// Yield once so pending producers on other goroutines settle.
	runtime.Gosched()
	select {
	case <-r.renderCh:
	default:
	}
	r.doRender()
}

// Unmount ends the session. The interrupt transition (if any) is applied,
// a final frame is rendered per the session's timing, the writer tears
// down per mode, and every later render request is silently dropped.
func (r *Root) Unmount(mode UnmountMode) {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	interrupted, handler := r.interrupted, r.onInterrupt
	r.mu.Unlock()

	if interrupted && handler != nil {
		handler()
	}

	switch r.mode.Kind {
	case ReactProgressive:
		r.Flush()
	case ReactFinal:
		r.renderFinal()
	}

	r.mu.Lock()
	r.disposed = true
	if r.loopStarted {
		close(r.renderCh)
	}
	r.mu.Unlock()

	if r.mode.Kind == ReactProgressive {
		r.writer.Unmount(mode)
		r.term.Stop()
	}
}

// renderLoop processes render requests serially. The throttle gate runs
// outside the lock: requests arriving mid-interval land in the channel
// slot and execute once, with the latest tree, at the interval boundary.
func (r *Root) renderLoop() {
	for range r.renderCh {
		r.mu.Lock()
		wait := r.interval - time.Since(r.lastFrame)
		r.mu.Unlock()
		if wait > 0 {
			time.Sleep(wait)
		}
		r.doRender()
	}
}

// doRender computes and writes one frame. Layout or render errors skip
// the frame entirely: the terminal write is the final, atomic step, so a
// failed frame never partially flushes.
func (r *Root) doRender() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed || r.tree == nil {
		return
	}

	width, rows := r.term.Columns(), r.term.Rows()
	r.vp = Viewport{Columns: width, Rows: rows}

	if r.writer.CheckWidth(width) {
		r.statics.Invalidate()
	}

	newStatic, err := r.rend.extractStatic(r.tree.Root(), width)
	if err != nil {
		r.log.Error("frame skipped", "stage", "static", "err", err)
		return
	}
	r.statics.Append(newStatic)
	pending := r.statics.Unwritten()
	// Replayed lines were clipped at the width they were first rendered
	// at; after a shrink they would exceed the current viewport and break
	// the writer's move-up arithmetic. Unwritten returns a copy, so the
	// retained log keeps the original lines.
	r.rend.clipWidth(pending, width)

	budget := rows - 1 - len(pending)
	if budget < 0 {
		budget = 0
	}
	dynamic, err := r.rend.renderDynamic(r.tree.Root(), width, budget)
	if err != nil {
		r.log.Error("frame skipped", "stage", "dynamic", "err", err)
		return
	}

	r.writer.WriteFrame(pending, dynamic)
	r.statics.MarkWritten()
	r.lastFrame = time.Now()
}

// renderFinal produces the one-shot render for non-interactive targets:
// full static log followed by the dynamic state, written once with no
// differential machinery and no height budget.
func (r *Root) renderFinal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tree == nil {
		return
	}
	width := r.term.Columns()

	static, err := r.rend.extractStatic(r.tree.Root(), width)
	if err != nil {
		r.log.Error("final render skipped", "stage", "static", "err", err)
		return
	}
	r.statics.Append(static)

	dynamic, err := r.rend.renderStandalone(r.tree.Root(), width)
	if err != nil {
		r.log.Error("final render skipped", "stage", "dynamic", "err", err)
		return
	}

	lines := append(r.statics.Unwritten(), dynamic...)
	r.writer.WriteFinal(lines)
	r.statics.MarkWritten()
}
