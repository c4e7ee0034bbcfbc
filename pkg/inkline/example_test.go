package inkline_test

import (
	"os"

	"github.com/overengineeringstudio/inkline/pkg/flexbox"
	"github.com/overengineeringstudio/inkline/pkg/inkline"
)

// Example assembles a one-task session: completed work accumulates in an
// append-only log above a live status line, and the last frame persists
// in scrollback at teardown.
func Example() {
	env := inkline.DetectEnvironment(os.Stdout, nil)
	mode := inkline.ResolveOutputMode(inkline.Flags{}, env)

	term := inkline.NewProcessTerminal(os.Stdout)
	root := inkline.NewRoot(term, flexbox.New(), mode)

	log := inkline.NewStatic()
	status := inkline.NewText(inkline.TextStyle{Bold: true}, "compiling")
	tree := inkline.NewTree(inkline.NewBox(inkline.BoxProps{}, log, status))

	if err := root.Start(); err != nil {
		panic(err)
	}
	tree.Commit()
	root.Render(tree)

	log.AppendChild(inkline.NewText(inkline.TextStyle{Color: "10"}, "✓ compiled"))
	status.SetText("done")
	tree.Commit()
	root.Render(tree)

	root.Unmount(inkline.UnmountPersist)
}
