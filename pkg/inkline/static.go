package inkline

// StaticLog accumulates the append-only committed log, decoupled from the
// always-replaced dynamic region: log history and a live status area
// coexist without the redraw algorithm erasing history.
//
// Lines below the written watermark have already reached the terminal.
// Invalidate rewinds the watermark so the retained buffer is re-emitted in
// full after a width discontinuity.
type StaticLog struct {
	lines   []string
	written int
	max     int
}

// NewStaticLog creates a log. max > 0 caps the retained buffer; the oldest
// tracked lines are dropped from this process's memory only — bytes
// already written to the terminal are not retroactively erased.
func NewStaticLog(max int) *StaticLog {
	return &StaticLog{max: max}
}

// Append adds newly committed lines to the log.
func (l *StaticLog) Append(lines []string) {
	if len(lines) == 0 {
		return
	}
	l.lines = append(l.lines, lines...)
	if l.max > 0 && len(l.lines) > l.max {
		drop := len(l.lines) - l.max
		l.lines = append([]string(nil), l.lines[drop:]...)
		l.written -= drop
		if l.written < 0 {
			l.written = 0
		}
	}
}

// Unwritten returns the lines not yet flushed to the terminal, oldest
// first. The caller flushes them and then calls MarkWritten.
func (l *StaticLog) Unwritten() []string {
	if l.written >= len(l.lines) {
		return nil
	}
	out := make([]string, len(l.lines)-l.written)
	copy(out, l.lines[l.written:])
	return out
}

// MarkWritten advances the watermark past every retained line.
func (l *StaticLog) MarkWritten() {
	l.written = len(l.lines)
}

// Invalidate rewinds the watermark to zero, scheduling a full re-emission
// of the retained buffer. Called after a width change, when differential
// assumptions about previously written lines no longer hold.
func (l *StaticLog) Invalidate() {
	l.written = 0
}

// Len returns the number of retained lines.
func (l *StaticLog) Len() int { return len(l.lines) }

// Lines returns a copy of the retained buffer, oldest first.
func (l *StaticLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
