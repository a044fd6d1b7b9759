package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tpgm/internal/codec"
	"github.com/roach88/tpgm/internal/predicate"
	"github.com/roach88/tpgm/internal/rewrite"
)

// UnfoldResult is the rewrite of one document.
type UnfoldResult struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Variables   []string `json:"variables"`
	Original    string   `json:"original"`
	Unfolded    string   `json:"unfolded"`
	Comparisons int      `json:"comparisons"`
	Fingerprint string   `json:"fingerprint"`
}

// NewUnfoldCommand creates the unfold command.
func NewUnfoldCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unfold <file-or-glob>...",
		Short: "Rewrite global time selectors into local predicates",
		Long: `Rewrite the predicates of query documents so that no global time
selector remains.

Each comparison on a global selector is unfolded into a conjunction or
disjunction over the pattern variables; globals nested in MIN/MAX terms
and durations are replaced by aggregates over the variables' selectors.
Patterns support ** globs.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnfold(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runUnfold(opts *RootOptions, patterns []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, loadErrors := LoadDocuments(patterns, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return reportLoadErrors(formatter, loadErrors)
	}

	rw := rewrite.New(rewrite.WithLogger(opts.logger()))
	results := make([]UnfoldResult, 0, len(loaded.Documents))
	for i, doc := range loaded.Documents {
		path := loaded.Paths[i]
		original := doc.Predicate()
		if original == nil {
			formatter.VerboseLog("Skipping %s: no predicates", path)
			continue
		}

		variables := documentVariables(opts, doc)
		unfolded, err := rw.Globals(original, variables)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeRewrite, fmt.Sprintf("%s: %v", path, err), err)
		}
		fp, err := codec.Fingerprint(unfolded)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeRewrite, fmt.Sprintf("%s: %v", path, err), err)
		}

		formatter.VerboseLog("Unfolded %s over %v", path, variables)
		results = append(results, UnfoldResult{
			Name:        doc.Name,
			Path:        path,
			Variables:   variables,
			Original:    original.String(),
			Unfolded:    unfolded.String(),
			Comparisons: rewrite.CountComparisons(unfolded),
			Fingerprint: fp,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(results)
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", r.Name, r.Unfolded)
	}
	return formatter.Success(b.String())
}

// documentVariables returns the pattern variables of doc, falling back to
// the configured default list.
func documentVariables(opts *RootOptions, doc *codec.Document) []string {
	if vars := doc.PatternVariables(); len(vars) > 0 {
		return vars
	}
	return opts.Variables
}

// rewriteDocument returns the document's conjoined predicate with every
// global selector removed.
func rewriteDocument(opts *RootOptions, doc *codec.Document) (predicate.Predicate, error) {
	p := doc.Predicate()
	if p == nil {
		return nil, nil
	}
	return rewrite.New(rewrite.WithLogger(opts.logger())).Globals(p, documentVariables(opts, doc))
}
