package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tpgm/internal/temporal"
)

// EvalResult is the evaluation of one time point argument.
type EvalResult struct {
	Input  string `json:"input"`
	Kind   string `json:"kind"` // "literal" or "constant"
	Millis int64  `json:"millis"`
	Text   string `json:"text"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <literal-or-millis>...",
		Short: "Evaluate time literals and constants to epoch millis",
		Long: `Evaluate time points to UTC epoch milliseconds.

Integer arguments are constants (a number of milliseconds). Other
arguments are time literals: YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS with optional
fractional seconds, or "now".`,
		Example: `  tpgm eval 2020-01-01 2020-06-01T12:30:00.250 now
  tpgm eval 86400000`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runEval(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	results := make([]EvalResult, 0, len(args))
	for _, arg := range args {
		result, err := evalTimePoint(arg)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeInvalidInput, err.Error(), err)
		}
		results = append(results, result)
	}

	if opts.Format == "json" {
		return formatter.Success(results)
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\t%d\t%s", r.Input, r.Millis, r.Text)
	}
	return formatter.Success(b.String())
}

func evalTimePoint(arg string) (EvalResult, error) {
	if millis, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64); err == nil {
		c := temporal.NewConstant(millis)
		value, _ := c.Evaluate()
		return EvalResult{Input: arg, Kind: "constant", Millis: value, Text: c.String()}, nil
	}

	lit, err := temporal.ParseLiteral(arg)
	if err != nil {
		return EvalResult{}, err
	}
	value, _ := lit.Evaluate()
	return EvalResult{Input: arg, Kind: "literal", Millis: value, Text: lit.String()}, nil
}
