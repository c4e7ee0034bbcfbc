package inkline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// UnmountMode selects what the writer leaves on screen at teardown.
type UnmountMode uint8

const (
	// UnmountPersist leaves the last frame visible and restores the cursor.
	UnmountPersist UnmountMode = iota
	// UnmountClear erases both the dynamic region and the visible static
	// log, leaving an empty viewport.
	UnmountClear
	// UnmountClearDynamic erases only the dynamic region, keeping the
	// static log.
	UnmountClearDynamic
)

// WriterStats captures metrics for a single frame written to the terminal.
type WriterStats struct {
	// StaticLines is the number of newly appended static lines.
	StaticLines int

	// DynamicLines is the number of lines in the replaced dynamic region.
	DynamicLines int

	// BytesWritten is the number of bytes sent to the terminal (escape
	// sequences + content).
	BytesWritten int

	// FullRedraw is true when no previous dynamic region existed, either
	// because this was the first frame or because a width change discarded
	// the differential state.
	FullRedraw bool

	// WriteTime is how long the terminal write took.
	WriteTime time.Duration
}

// writerStatsJSON is the JSONL record written by the debug writer.
type writerStatsJSON struct {
	Ts           int64 `json:"ts"`
	WriteUs      int64 `json:"write_us"`
	StaticLines  int   `json:"static_lines"`
	DynamicLines int   `json:"dynamic_lines"`
	BytesWritten int   `json:"bytes_written"`
	FullRedraw   bool  `json:"full_redraw"`
}

// Writer is the differential terminal writer. It owns all previous-frame
// state and is the only component permitted to write to the terminal
// stream. Given newly committed static lines and the full new dynamic line
// set, it emits the minimal control output that appends the static lines
// exactly once above the dynamic region and replaces the prior dynamic
// region with the new one.
type Writer struct {
	term Terminal

	previousDynamic int
	previousWidth   int
	staticWritten   int
	fullRedraws     int

	debugWriter io.Writer
}

// NewWriter creates a writer for the given terminal.
func NewWriter(term Terminal) *Writer {
	return &Writer{term: term}
}

// SetDebugWriter enables per-frame stats logging as JSONL. Pass nil to
// disable.
func (w *Writer) SetDebugWriter(dw io.Writer) { w.debugWriter = dw }

// FullRedraws returns the number of non-differential frames written.
func (w *Writer) FullRedraws() int { return w.fullRedraws }

// CheckWidth records the frame's width and reports whether it changed
// since the previous frame. A change is a discontinuity: all differential
// state is discarded, forcing the next frame to be a full, non-diffed
// redraw with no stale-column fragments. The caller must also invalidate
// the static log so its retained lines re-emit at the new width.
func (w *Writer) CheckWidth(width int) bool {
	changed := w.previousWidth != 0 && w.previousWidth != width
	w.previousWidth = width
	if changed {
		w.previousDynamic = 0
		w.staticWritten = 0
	}
	return changed
}

// WriteFrame replaces the dynamic region and appends static lines. The
// write itself is synchronous and atomic from the renderer's point of
// view: everything up to this call can fail and simply skip the frame
// without corrupting already-written terminal state.
func (w *Writer) WriteFrame(static, dynamic []string) WriterStats {
	stats := WriterStats{
		StaticLines:  len(static),
		DynamicLines: len(dynamic),
		FullRedraw:   w.previousDynamic == 0,
	}
	if stats.FullRedraw {
		w.fullRedraws++
	}

	var buf strings.Builder
	buf.WriteString("\x1b[?2026h") // begin synchronized output
	if w.previousDynamic > 0 {
		fmt.Fprintf(&buf, "\x1b[%dA", w.previousDynamic)
	}
	buf.WriteString("\r\x1b[0J") // erase prior dynamic region
	for _, line := range static {
		buf.WriteString(line)
		buf.WriteString(segmentReset)
		buf.WriteString("\r\n")
	}
	// Every dynamic line is newline-terminated so the cursor parks on the
	// row just below the region; moving up len(dynamic) rows next frame
	// lands exactly on the region's first row. The budget of rows-1 leaves
	// room for that cursor row without scrolling.
	for _, line := range dynamic {
		buf.WriteString(line)
		buf.WriteString(segmentReset)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\x1b[?2026l") // end synchronized output
	stats.BytesWritten = buf.Len()

	start := time.Now()
	w.term.WriteString(buf.String())
	stats.WriteTime = time.Since(start)

	w.previousDynamic = len(dynamic)
	w.staticWritten += len(static)

	w.emitStats(stats)
	return stats
}

// WriteFinal emits a single non-diffed render pass for non-interactive
// targets. The differential machinery is bypassed entirely.
func (w *Writer) WriteFinal(lines []string) {
	if len(lines) == 0 {
		return
	}
	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	w.term.WriteString(buf.String())
}

// Unmount tears down the live region per the selected mode and restores
// cursor visibility.
func (w *Writer) Unmount(mode UnmountMode) {
	switch mode {
	case UnmountPersist:
		// The cursor already sits on the row below the last frame; the
		// frame stays in scrollback as-is.
	case UnmountClear:
		up := w.previousDynamic + w.staticWritten
		if up > 0 {
			w.term.WriteString(fmt.Sprintf("\x1b[%dA", up))
		}
		w.term.WriteString("\r\x1b[0J")
	case UnmountClearDynamic:
		if w.previousDynamic > 0 {
			w.term.WriteString(fmt.Sprintf("\x1b[%dA", w.previousDynamic))
		}
		w.term.WriteString("\r\x1b[0J")
	}
	w.previousDynamic = 0
	w.staticWritten = 0
	w.term.ShowCursor()
}

func (w *Writer) emitStats(stats WriterStats) {
	if w.debugWriter == nil {
		return
	}
	rec := writerStatsJSON{
		Ts:           time.Now().UnixMilli(),
		WriteUs:      stats.WriteTime.Microseconds(),
		StaticLines:  stats.StaticLines,
		DynamicLines: stats.DynamicLines,
		BytesWritten: stats.BytesWritten,
		FullRedraw:   stats.FullRedraw,
	}
	data, _ := json.Marshal(rec)
	data = append(data, '\n')
	w.debugWriter.Write(data) //nolint:errcheck
}
