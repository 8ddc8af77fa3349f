// Package cmd implements the kvfilter command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvfilter/internal/config"
	"github.com/oakwood-commons/kvfilter/internal/formatter"
	"github.com/oakwood-commons/kvfilter/internal/limiter"
	"github.com/oakwood-commons/kvfilter/internal/ui"
	"github.com/oakwood-commons/kvfilter/pkg/filter"
	"github.com/oakwood-commons/kvfilter/pkg/logger"
	"github.com/oakwood-commons/kvfilter/pkg/settings"
)

var (
	expression    string
	fromExpr      string
	schemaFile    string
	output        = formatFlag{format: formatter.YAML}
	limitRecords  int
	offsetRecords int
	tailRecords   int
	interactive   bool
	debug         bool
	configFile    string
	noColor       bool
	outputWidth   int

	// activeConfig is the merged configuration, loaded before every command.
	activeConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [file]",
	Short: "Filter records with a small typed expression language",
	Long: `kvfilter filters a list of records read from JSON, NDJSON, YAML or TOML.

Expressions name members and compare them against literals:

  age >= 18 , name ~ "^A"      both clauses hold
  role = admin | role = owner  either clause holds
  tags .any = go               some element matches
  address ( city = Oslo )      a condition on a nested object

Use -i to build the expression interactively with completion.`,
	Example: "\n  kvfilter people.json -e 'age > 30'\n  cat people.ndjson | kvfilter -e 'tags .length >= 2' -o table\n  kvfilter deploy.yaml --from '_.items' -e 'replicas > 1'\n  kvfilter people.json -i\n",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(resolveConfigPath(configFile))
		if err != nil {
			return err
		}
		activeConfig = cfg

		level := cfg.LogLevel()
		if debug {
			level = -1
		}
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		run := settings.NewCliParams()
		run.MinLogLevel = level
		run.OutputFormat = string(outputFormat(cmd))
		run.NoColor = noColor || cfg.Output.NoColor
		run.Input.Select = fromExpr

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = logger.WithLogger(ctx, lgr)
		cmd.SetContext(settings.IntoContext(ctx, run))
		return nil
	},
	RunE: runFilter,
}

func init() {
	rootCmd.Flags().StringVarP(&expression, "expression", "e", "", "filter expression; empty matches every record")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "build the expression interactively")
	rootCmd.Flags().IntVar(&limitRecords, "limit", 0, "Limit total number of records displayed")
	rootCmd.Flags().IntVar(&offsetRecords, "offset", 0, "Skip the first N records")
	rootCmd.Flags().IntVar(&tailRecords, "tail", 0, "Show the last N records (mutually exclusive with --limit; ignores --offset)")

	addInputFlags(rootCmd)
	addOutputFlags(rootCmd)
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd, completeCmd, explainCmd, serveCmd, configCmd)
}

// addInputFlags registers the flags controlling how records are loaded.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fromExpr, "from", "", "CEL expression selecting the records inside the document, using '_' as root (e.g. '_.items')")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "path to a JSON Schema (JSON or YAML) with type hints for the records")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().VarP(&output, "output", "o", "output format: yaml|json|ndjson|toml|table (default from config)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	cmd.Flags().IntVar(&outputWidth, "width", 0, "table width in columns (default: terminal width)")
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func runFilter(cmd *cobra.Command, args []string) error {
	limits := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if !limits.IsActive() {
		limits = activeConfig.Limits
	}
	if err := limits.Validate(); err != nil {
		return fmt.Errorf("record limiting error: %w", err)
	}

	lgr := logger.FromContext(cmd.Context())
	ds, err := loadDataset(cmd, args)
	if err != nil {
		return err
	}

	start := time.Now()
	var matched []any
	expr := expression
	if interactive {
		res, err := ui.Run(ds, ui.Options{
			Expression: expression,
			NoColor:    noColor || activeConfig.Output.NoColor,
			Editor:     editorOptions(cmd),
		})
		if err != nil {
			return err
		}
		if res.Canceled {
			return nil
		}
		expr, matched = res.Expression, res.Items
	} else {
		p, err := filter.Compile(expr, ds.Root())
		if err != nil {
			return newExprError(expr, err)
		}
		matched = ds.Select(p)
	}
	lgr.V(1).Info("filtered",
		logger.ExpressionKey, expr,
		"matched", len(matched),
		"total", ds.Len(),
		logger.DurationKey, time.Since(start).String())

	return formatter.Write(cmd.OutOrStdout(), limiter.Apply(limits, matched), formatter.Options{
		Format:  outputFormat(cmd),
		NoColor: noColor || activeConfig.Output.NoColor,
		Width:   outputWidth,
	})
}

// editorOptions applies the completion settings of the active config and
// the command's logger.
func editorOptions(cmd *cobra.Command) []filter.Option {
	c := activeConfig.Completion
	return []filter.Option{
		filter.WithLogger(*logger.FromContext(cmd.Context())),
		filter.WithMaxResults(c.MaxResults),
		filter.WithMaxComposites(c.MaxComposites),
		filter.WithHistory(filter.NewHistory(c.HistorySize)),
	}
}

// outputFormat is the --output flag when given, otherwise the configured
// default.
func outputFormat(cmd *cobra.Command) formatter.Format {
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		return output.format
	}
	if f, err := formatter.ParseFormat(activeConfig.Output.Format); err == nil {
		return f
	}
	return formatter.YAML
}

// ExitCode maps an error returned by Execute to a process exit code: 2 for
// usage problems, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoInput), errors.Is(err, limiter.ErrExclusive):
		return 2
	}
	return 1
}
