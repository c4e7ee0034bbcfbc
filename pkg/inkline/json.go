package inkline

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Frame is the structured snapshot emitted by the JSON output modes:
// plain-text render of the static log and dynamic region, free of escape
// sequences.
type Frame struct {
	Static  []string `json:"static"`
	Dynamic []string `json:"dynamic"`
	Columns int      `json:"columns"`
	Rows    int      `json:"rows"`
}

// Snapshot renders the current tree into a plain-text Frame without
// touching the terminal. Static content is committed in the process, so a
// snapshot taken at teardown contains each log line exactly once.
func (r *Root) Snapshot() (Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	width, rows := r.term.Columns(), r.term.Rows()
	frame := Frame{Columns: width, Rows: rows}
	if r.tree == nil {
		return frame, nil
	}

	plain := &renderer{engine: r.engine, colors: false}
	static, err := plain.extractStatic(r.tree.Root(), width)
	if err != nil {
		return frame, err
	}
	r.statics.Append(static)
	frame.Static = r.statics.Lines()

	dynamic, err := plain.renderStandalone(r.tree.Root(), width)
	if err != nil {
		return frame, err
	}
	frame.Dynamic = dynamic
	return frame, nil
}

// EncodeFrame writes v as a single JSON document. Given well-typed state
// a marshal failure is unreachable, so it is treated as a defect rather
// than a user-facing error.
func EncodeFrame(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("inkline: encode frame: %v", err))
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// StreamEmitter writes JSONL events for the streaming JSON mode. Safe for
// concurrent use; each event occupies exactly one line.
type StreamEmitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStreamEmitter creates an emitter writing to w.
func NewStreamEmitter(w io.Writer) *StreamEmitter {
	return &StreamEmitter{w: w}
}

type streamEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Emit writes one event line. Marshal failures are defects, as in
// EncodeFrame.
func (e *StreamEmitter) Emit(event string, data any) error {
	rec, err := json.Marshal(streamEvent{Event: event, Data: data})
	if err != nil {
		panic(fmt.Sprintf("inkline: encode event %q: %v", event, err))
	}
	rec = append(rec, '\n')
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(rec)
	return err
}
