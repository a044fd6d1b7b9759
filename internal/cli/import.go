package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tpgm/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult summarizes an import.
type ImportResult struct {
	Database string `json:"database"`
	Files    int    `json:"files"`
	Elements int    `json:"elements"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import --db <path> <file-or-glob>...",
		Short: "Store the elements of documents in a database",
		Long: `Store the temporal graph elements listed by documents in a SQLite
database, creating it if needed.

Elements are upserted by id. All elements of one run are written in a
single transaction; on error nothing is stored.

Exit codes:
  0 - Elements stored
  1 - Invalid document or element
  2 - Command error (bad pattern, database cannot be opened, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, patterns []string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, loadErrors := LoadDocuments(patterns, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return reportLoadErrors(formatter, loadErrors)
	}

	var elements []store.Element
	for i, doc := range loaded.Documents {
		formatter.VerboseLog("Read %d element(s) from %s", len(doc.Elements), loaded.Paths[i])
		elements = append(elements, doc.Elements...)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	if err := st.PutElements(ctx, elements); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, fmt.Sprintf("failed to store elements: %v", err), err)
	}

	result := ImportResult{
		Database: opts.Database,
		Files:    len(loaded.Documents),
		Elements: len(elements),
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("Imported %d element(s) from %d file(s) into %s",
		result.Elements, result.Files, result.Database))
}
