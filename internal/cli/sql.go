package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tpgm/internal/querysql"
)

// SQLResult is the compiled WHERE fragment of one document.
type SQLResult struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Where  string `json:"where"`
	Params []any  `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql <file-or-glob>...",
		Short: "Compile document predicates to a SQL WHERE fragment",
		Long: `Rewrite the predicates of query documents, then compile them to a
parameterized SQLite WHERE fragment.

Columns are named <variable>_<field> (a_val_from); properties
<variable>_<key>. Values are always bound as parameters.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runSQL(opts *RootOptions, patterns []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, loadErrors := LoadDocuments(patterns, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return reportLoadErrors(formatter, loadErrors)
	}

	compiler := querysql.NewSQLCompiler()
	results := make([]SQLResult, 0, len(loaded.Documents))
	for i, doc := range loaded.Documents {
		path := loaded.Paths[i]
		p, err := rewriteDocument(opts, doc)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeRewrite, fmt.Sprintf("%s: %v", path, err), err)
		}
		if p == nil {
			formatter.VerboseLog("Skipping %s: no predicates", path)
			continue
		}

		where, params, err := compiler.Compile(p)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeCompile, fmt.Sprintf("%s: %v", path, err), err)
		}
		if params == nil {
			params = []any{}
		}
		results = append(results, SQLResult{Name: doc.Name, Path: path, Where: where, Params: params})
	}

	if opts.Format == "json" {
		return formatter.Success(results)
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "-- %s\n%s\n-- params: %v", r.Name, r.Where, r.Params)
	}
	return formatter.Success(b.String())
}
