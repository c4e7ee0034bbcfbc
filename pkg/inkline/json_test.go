package inkline

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotIsPlainText(t *testing.T) {
	term := newMockTerminal(80, 24)
	r := newRoot(term, &columnEngine{}, OutputMode{Kind: JSONFinal})

	static := NewStatic(NewText(TextStyle{}, "done 1"))
	tree := NewTree(NewBox(BoxProps{}, static,
		NewText(TextStyle{Color: "212", Bold: true}, "working")))
	tree.Commit()
	r.Render(tree)

	frame, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"done 1"}, frame.Static)
	assert.Equal(t, []string{"working"}, frame.Dynamic)
	assert.Equal(t, 80, frame.Columns)
	assert.Equal(t, 24, frame.Rows)
	for _, line := range append(frame.Static, frame.Dynamic...) {
		assert.NotContains(t, line, "\x1b", "snapshots carry no escape sequences")
	}
	assert.Empty(t, term.output(), "snapshots never touch the terminal")
}

func TestSnapshotCommitsStaticExactlyOnce(t *testing.T) {
	term := newMockTerminal(80, 24)
	r := newRoot(term, &columnEngine{}, OutputMode{Kind: JSONFinal})

	static := NewStatic(NewText(TextStyle{}, "done 1"))
	tree := NewTree(NewBox(BoxProps{}, static))
	tree.Commit()
	r.Render(tree)

	frame, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"done 1"}, frame.Static)

	// A later snapshot still sees the retained log, without duplicates.
	frame, err = r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"done 1"}, frame.Static)
}

func TestEncodeFrame(t *testing.T) {
	var buf bytes.Buffer
	frame := Frame{
		Static:  []string{"done"},
		Dynamic: []string{"status"},
		Columns: 80,
		Rows:    24,
	}
	require.NoError(t, EncodeFrame(&buf, frame))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	var decoded Frame
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, frame, decoded)
}

func TestStreamEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := NewStreamEmitter(&buf)

	require.NoError(t, e.Emit("step", map[string]int{"n": 1}))
	require.NoError(t, e.Emit("complete", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"event":"step","data":{"n":1}}`, lines[0])
	assert.JSONEq(t, `{"event":"complete"}`, lines[1])
}
