package ui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/kvfilter/internal/schema"
)

// Run starts the editor over ds and blocks until the user accepts an
// expression or quits. Extra ProgramOptions (e.g., custom IO) are passed to
// tea.NewProgram.
func Run(ds *schema.Dataset, opts Options, progOpts ...tea.ProgramOption) (Result, error) {
	m := New(ds, opts)
	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil {
		return Result{}, fmt.Errorf("run editor: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return Result{Canceled: true}, nil
	}
	return fm.Result(), nil
}
