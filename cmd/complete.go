package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvfilter/internal/formatter"
	"github.com/oakwood-commons/kvfilter/pkg/filter"
)

var cursorPos int

var completeCmd = &cobra.Command{
	Use:   "complete [file]",
	Short: "List completion candidates for an expression",
	Long: `List the completion candidates at a cursor position of an expression.

The cursor defaults to the end of the expression. Placeholders describe the
value expected next and insert nothing.`,
	Example: "\n  kvfilter complete people.json -e 'ag'\n  kvfilter complete people.json -e 'age >= ' -o json\n  kvfilter complete people.json -e 'age > 1' --cursor 0\n",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd, args)
		if err != nil {
			return err
		}
		e := filter.NewEditor(ds.Root(), editorOptions(cmd)...)
		e.Load(expression)
		if cmd.Flags().Changed("cursor") {
			if cursorPos < 0 || cursorPos > e.Len() {
				return fmt.Errorf("--cursor %d out of range [0,%d]", cursorPos, e.Len())
			}
			e.SetCursor(cursorPos)
		}

		items := make([]any, 0, len(e.Candidates()))
		for _, c := range e.Candidates() {
			items = append(items, map[string]any{
				"text":        c.Text,
				"kind":        c.Kind.String(),
				"detail":      c.Detail,
				"description": c.Description,
			})
		}
		return formatter.Write(cmd.OutOrStdout(), items, formatter.Options{
			Format:  outputFormat(cmd),
			NoColor: noColor || activeConfig.Output.NoColor,
			Width:   outputWidth,
			Columns: []string{"text", "kind", "detail", "description"},
		})
	},
}

func init() {
	completeCmd.Flags().StringVarP(&expression, "expression", "e", "", "expression to complete")
	completeCmd.Flags().IntVar(&cursorPos, "cursor", 0, "cursor offset in the expression (default: end)")
	addInputFlags(completeCmd)
	addOutputFlags(completeCmd)
}
