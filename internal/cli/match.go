package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tpgm/internal/codec"
	"github.com/roach88/tpgm/internal/store"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Database string
}

// MatchResult holds the embeddings found for one document.
type MatchResult struct {
	Name       string            `json:"name"`
	Path       string            `json:"path"`
	Variables  []string          `json:"variables"`
	Where      string            `json:"where,omitempty"`
	Embeddings []store.Embedding `json:"embeddings"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match --db <path> <file-or-glob>...",
		Short: "Find the embeddings of document patterns in a database",
		Long: `Rewrite the predicates of each document, then find every assignment
of stored elements to the document's variables that satisfies them.

Variables come from the document's bindings (with optional labels), its
declared variables, or the config's default list.

Exit codes:
  0 - Query ran (zero matches included)
  1 - Invalid document or predicate
  2 - Command error (database not found, etc.)

Examples:
  tpgm match --db ./graph.db query.yaml
  tpgm match --db ./graph.db 'queries/**/*.cue' --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runMatch(opts *MatchOptions, patterns []string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("database not found: %s", opts.Database), err)
	}

	loaded, loadErrors := LoadDocuments(patterns, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return reportLoadErrors(formatter, loadErrors)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	results := make([]MatchResult, 0, len(loaded.Documents))
	for i, doc := range loaded.Documents {
		path := loaded.Paths[i]
		bindings := documentBindings(opts.RootOptions, doc)
		if len(bindings) == 0 {
			return formatter.Fail(ExitFailure, ErrCodeInvalidInput,
				fmt.Sprintf("%s: no pattern variables", path), nil)
		}

		where, err := rewriteDocument(opts.RootOptions, doc)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeRewrite, fmt.Sprintf("%s: %v", path, err), err)
		}

		embeddings, err := st.Match(ctx, bindings, where)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, fmt.Sprintf("%s: %v", path, err), err)
		}
		formatter.VerboseLog("Matched %s: %d embedding(s)", path, len(embeddings))

		result := MatchResult{
			Name:       doc.Name,
			Path:       path,
			Embeddings: embeddings,
		}
		for _, b := range bindings {
			result.Variables = append(result.Variables, b.Variable)
		}
		if where != nil {
			result.Where = where.String()
		}
		results = append(results, result)
	}

	if opts.Format == "json" {
		return formatter.Success(results)
	}
	return formatter.Success(formatMatchText(results))
}

// documentBindings returns the document's bindings, or unlabeled bindings
// of its pattern variables.
func documentBindings(opts *RootOptions, doc *codec.Document) []store.Binding {
	if len(doc.Bindings) > 0 {
		return doc.Bindings
	}
	vars := documentVariables(opts, doc)
	bindings := make([]store.Binding, len(vars))
	for i, v := range vars {
		bindings[i] = store.Binding{Variable: v}
	}
	return bindings
}

func formatMatchText(results []MatchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %d match(es)", r.Name, len(r.Embeddings))
		for _, e := range r.Embeddings {
			parts := make([]string, len(r.Variables))
			for j, v := range r.Variables {
				parts[j] = v + "=" + e[v]
			}
			fmt.Fprintf(&b, "\n  %s", strings.Join(parts, " "))
		}
	}
	return b.String()
}
