package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvfilter/internal/formatter"
	"github.com/oakwood-commons/kvfilter/pkg/filter"
)

var explainCmd = &cobra.Command{
	Use:   "explain [file]",
	Short: "Show how an expression is tokenized, typed and parsed",
	Long: `Show the tokens of an expression with the type context in force at each
one, the parse tree, and the compile result.`,
	Example: "\n  kvfilter explain people.json -e 'address ( city = Oslo ) , age > 30'\n",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd, args)
		if err != nil {
			return err
		}
		e := filter.NewEditor(ds.Root(), editorOptions(cmd)...)
		e.Load(expression)
		_, cerr := e.Compile()

		if outputFormat(cmd) != formatter.Table {
			return formatter.Write(cmd.OutOrStdout(), []any{explainDoc(e, cerr)}, formatter.Options{Format: outputFormat(cmd)})
		}
		return writeExplainText(cmd.OutOrStdout(), e, cerr)
	},
}

func init() {
	explainCmd.Flags().StringVarP(&expression, "expression", "e", "", "expression to explain")
	addInputFlags(explainCmd)
	addOutputFlags(explainCmd)
}

func tokenItems(e *filter.Editor) []any {
	records := e.Records()
	items := make([]any, 0, len(e.Lexemes()))
	for i, lx := range e.Lexemes() {
		item := map[string]any{
			"index":    i,
			"token":    lx.Text,
			"category": lx.Category.String(),
			"span":     fmt.Sprintf("[%d,%d)", lx.Span.Start, lx.Span.End),
		}
		if i < len(records) {
			rec := records[i]
			item["nearest"] = rec.Nearest.String()
			item["enclosing"] = rec.Enclosing.String()
			item["depth"] = rec.Depth
			item["frozen"] = rec.Frozen
		}
		items = append(items, item)
	}
	return items
}

func explainDoc(e *filter.Editor, cerr error) map[string]any {
	doc := map[string]any{
		"expression": e.Text(),
		"tokens":     tokenItems(e),
	}
	if t := e.Tree(); t != nil {
		doc["tree"] = t.String()
	}
	if cerr != nil {
		doc["error"] = cerr.Error()
	}
	return doc
}

func writeExplainText(w io.Writer, e *filter.Editor, cerr error) error {
	nc := noColor || activeConfig.Output.NoColor
	columns := []string{"index", "token", "category", "span", "nearest", "enclosing", "depth", "frozen"}
	if _, err := io.WriteString(w, formatter.RenderTable(tokenItems(e), columns, nc, outputWidth)); err != nil {
		return err
	}
	tree := "(not parsed)\n"
	if t := e.Tree(); t != nil {
		tree = t.String()
	}
	rows := [][]string{
		{"expression", e.Text()},
		{"tokens", strconv.Itoa(len(e.Lexemes()))},
		{"result", "ok"},
	}
	if cerr != nil {
		rows[2][1] = cerr.Error()
	}
	if _, err := io.WriteString(w, "\n"+tree+"\n"); err != nil {
		return err
	}
	_, err := io.WriteString(w, formatter.RenderRows(rows, nc, outputWidth))
	return err
}
