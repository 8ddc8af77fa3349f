package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/kvfilter/internal/schema"
	"github.com/oakwood-commons/kvfilter/pkg/core"
	"github.com/oakwood-commons/kvfilter/pkg/logger"
)

// errNoInput is returned when neither a file nor piped stdin is given.
var errNoInput = errors.New("no input: pass a file or pipe records on stdin")

// loadDataset reads the records named by args (or stdin), applies --from
// and --schema, and builds the typed dataset.
func loadDataset(cmd *cobra.Command, args []string) (*schema.Dataset, error) {
	opts := []core.Option{core.WithLogger(*logger.FromContext(cmd.Context()))}
	if schemaFile != "" {
		hint, err := core.LoadHints(schemaFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithHint(hint))
	}
	engine, err := core.New(opts...)
	if err != nil {
		return nil, err
	}

	if len(args) == 1 && args[0] != "-" {
		ds, err := engine.LoadFile(args[0], fromExpr)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", args[0], err)
		}
		return ds, nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, errNoInput
	}
	ds, err := engine.LoadReader(in, fromExpr)
	if err != nil {
		return nil, fmt.Errorf("load stdin: %w", err)
	}
	return ds, nil
}
