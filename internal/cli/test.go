package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/tpgm/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario name filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-file-or-glob>...",
		Short: "Run query scenarios",
		Long: `Run scenario files end to end.

Each scenario names a query document. Its predicates are rewritten and
compiled, its elements stored in a fresh in-memory database, and the
result compared with the scenario's expectations.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  tpgm test 'scenarios/**/*.yaml'
  tpgm test 'scenarios/*.yaml' --filter "overlap*"
  tpgm test scenarios/overlap.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name glob pattern")

	return cmd
}

func runTests(opts *TestOptions, patterns []string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Filter != "" && !doublestar.ValidatePattern(opts.Filter) {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("invalid filter pattern: %s", opts.Filter), nil)
	}

	paths, err := ResolvePaths(patterns)
	if err != nil {
		return reportLoadErrors(formatter, []error{err})
	}

	h := harness.New(harness.WithLogger(opts.logger()))
	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(paths))}
	for _, path := range paths {
		sr, ok := runScenario(ctx, h, path, opts.Filter)
		if !ok {
			formatter.VerboseLog("Skipping %s: filtered out", path)
			continue
		}
		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if err := formatter.Success(formatTestText(result)); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", result.Failed, result.Total))
	}
	return nil
}

// runScenario loads and executes one scenario file. ok is false when the
// scenario is excluded by the filter.
func runScenario(ctx context.Context, h *harness.Harness, path, filter string) (ScenarioResult, bool) {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if !matchesFilter(filter, name) {
			return ScenarioResult{}, false
		}
		return ScenarioResult{
			Name:   name,
			Path:   path,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}, true
	}
	if !matchesFilter(filter, scenario.Name) {
		return ScenarioResult{}, false
	}

	result, err := h.Run(ctx, scenario)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Path:   path,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}, true
	}
	return ScenarioResult{
		Name:   scenario.Name,
		Path:   path,
		Pass:   result.Pass,
		Errors: result.Errors,
	}, true
}

func matchesFilter(filter, name string) bool {
	if filter == "" {
		return true
	}
	ok, err := doublestar.Match(filter, name)
	return err == nil && ok
}

func formatTestText(result TestResult) string {
	var b strings.Builder
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(&b, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	fmt.Fprintf(&b, "\n%d passed, %d failed, %d total", result.Passed, result.Failed, result.Total)
	return b.String()
}
