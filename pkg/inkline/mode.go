package inkline

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ModeKind is the resolved output target for a session.
type ModeKind uint8

const (
	// ReactProgressive drives the live differential writer, redrawing the
	// dynamic region as state changes.
	ReactProgressive ModeKind = iota
	// ReactFinal renders the visual output exactly once at teardown.
	ReactFinal
	// JSONFinal emits a single structured JSON document at teardown.
	JSONFinal
	// JSONProgressive streams JSONL events as state changes.
	JSONProgressive
)

func (k ModeKind) String() string {
	switch k {
	case ReactProgressive:
		return "react-progressive"
	case ReactFinal:
		return "react-final"
	case JSONFinal:
		return "json-final"
	case JSONProgressive:
		return "json-progressive"
	default:
		return "unknown"
	}
}

// RenderConfig tunes the visual modes.
type RenderConfig struct {
	// Animate enables spinner frames and other time-driven redraws.
	Animate bool
	// Colors enables SGR styling. When false output is plain text.
	Colors bool
	// Alternate selects the alternate screen buffer. The resolver never
	// sets it; full-screen backends are outside the engine.
	Alternate bool
}

// OutputMode is the resolved combination of timing (progressive or final)
// and encoding (visual or JSON) for a session. It is resolved once at
// session start and immutable thereafter.
type OutputMode struct {
	Kind   ModeKind
	Config RenderConfig
}

// Progressive reports whether the scheduler drives live updates, as
// opposed to rendering exactly once at teardown.
func (m OutputMode) Progressive() bool {
	return m.Kind == ReactProgressive || m.Kind == JSONProgressive
}

// JSON reports whether the session emits structured output instead of
// terminal escape sequences.
func (m OutputMode) JSON() bool {
	return m.Kind == JSONFinal || m.Kind == JSONProgressive
}

// Flags are the explicit output controls, typically bound to CLI flags.
type Flags struct {
	// JSON forces structured output; Stream selects the progressive
	// JSONL variant.
	JSON   bool
	Stream bool
	// ForceVisual forces the live visual renderer even without a TTY.
	ForceVisual bool
	// Final forces the one-shot visual render.
	Final bool
	// NoColor strips SGR styling regardless of the chosen mode.
	NoColor bool
}

// Environment carries the detected output context. Use DetectEnvironment
// for the real process environment, or construct one directly in tests.
type Environment struct {
	// TTY is true when output goes to an interactive terminal.
	TTY bool
	// CI is true in continuous-integration environments.
	CI bool
	// Agent is true when an automated coding agent drives the process.
	Agent bool
	// Piped is true when output feeds another process.
	Piped bool
	// RedirectedToFile is true when output goes to a regular file.
	RedirectedToFile bool
	// ForceVisual mirrors the env-var form of Flags.ForceVisual.
	ForceVisual bool
	// NoColor is true when the environment disables color (NO_COLOR).
	NoColor bool
}

// ciVars are environment variables that identify CI systems.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "CIRCLECI", "JENKINS_URL", "TEAMCITY_VERSION"}

// agentVars identify automated coding agents driving the process; those
// sessions want machine-readable output even when a TTY is attached.
var agentVars = []string{"CLAUDECODE", "CURSOR_AGENT", "AGENT"}

// DetectEnvironment gathers output-context signals for the given stream.
// getenv may be nil, in which case os.Getenv and termenv are consulted.
func DetectEnvironment(out *os.File, getenv func(string) string) Environment {
	var e Environment
	if out == nil {
		out = os.Stdout
	}
	e.TTY = isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	if !e.TTY {
		if st, err := out.Stat(); err == nil {
			mode := st.Mode()
			e.Piped = mode&os.ModeNamedPipe != 0 || mode&os.ModeSocket != 0
			e.RedirectedToFile = mode.IsRegular()
		}
	}
	if getenv == nil {
		getenv = os.Getenv
		e.NoColor = termenv.EnvNoColor()
	} else {
		e.NoColor = getenv("NO_COLOR") != ""
	}
	for _, v := range ciVars {
		if getenv(v) != "" {
			e.CI = true
			break
		}
	}
	for _, v := range agentVars {
		if getenv(v) != "" {
			e.Agent = true
			break
		}
	}
	e.ForceVisual = getenv("FORCE_TTY") != ""
	return e
}

// ResolveOutputMode maps explicit flags and environment signals to an
// output mode. It is a pure decision function, callable independent of a
// running root. Precedence, highest first:
//
//  1. Explicit JSON flag, with the stream sub-flag picking the variant.
//  2. Explicit or env force-visual: live rendering, animated only when a
//     real interactive terminal is attached.
//  3. Automated agent detected: structured output.
//  4. Interactive terminal: live rendering, static frames under CI.
//  5. Output piped to another process: structured output.
//  6. Output redirected to a file, or the explicit final override:
//     one-shot visual render with colors preserved.
//
// Color disablement (flag or NO_COLOR) applies last, regardless of branch.
func ResolveOutputMode(f Flags, e Environment) OutputMode {
	colors := !f.NoColor && !e.NoColor

	var m OutputMode
	switch {
	case f.JSON:
		if f.Stream {
			m = OutputMode{Kind: JSONProgressive}
		} else {
			m = OutputMode{Kind: JSONFinal}
		}
	case f.ForceVisual || e.ForceVisual:
		m = OutputMode{Kind: ReactProgressive, Config: RenderConfig{
			Animate: e.TTY && !e.CI,
			Colors:  colors,
		}}
	case e.Agent:
		m = OutputMode{Kind: JSONFinal}
	case e.TTY && !f.Final:
		m = OutputMode{Kind: ReactProgressive, Config: RenderConfig{
			Animate: !e.CI,
			Colors:  colors,
		}}
	case e.Piped && !f.Final:
		m = OutputMode{Kind: JSONFinal}
	default:
		m = OutputMode{Kind: ReactFinal, Config: RenderConfig{
			Colors: colors,
		}}
	}
	return m
}
