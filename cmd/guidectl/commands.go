package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"econguide/internal/cli"
	"econguide/internal/content"
	"econguide/internal/core"
	"econguide/internal/services"
)

func newEvalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eval A OP B",
		Short: "Apply one of + - * / ^ % // to two numbers",
		Long: `Apply an operator to two numbers with the guide's semantics:
"/" is floating point division, "%" takes the sign of the divisor and
"//" rounds towards negative infinity. Quote "*" in the shell.`,
		Example: `  guidectl eval 10 / 4
  guidectl eval 2 ^ 10
  guidectl eval -- -7 // 2`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := core.ParseOperand(args[0])
			if err != nil {
				return fmt.Errorf("operand A: %w", err)
			}
			op, err := core.ParseOperator(args[1])
			if err != nil {
				return err
			}
			b, err := core.ParseOperand(args[2])
			if err != nil {
				return fmt.Errorf("operand B: %w", err)
			}

			calc := services.NewCalculator(nil, opts.logger(cmd.ErrOrStderr())).
				Evaluate(cmd.Context(), a, b, op)
			return printCalculation(cmd, opts, calc)
		},
	}
}

func printCalculation(cmd *cobra.Command, opts *options, calc core.Calculation) error {
	out := cmd.OutOrStdout()
	if !calc.OK() {
		code := core.ErrorCode(calc.Err)
		if opts.json {
			_ = printJSON(out, map[string]string{"error": code, "message": calc.Err.Error()})
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v (%s)\n", calc.Err, code)
		}
		return errFailed
	}

	if opts.json {
		return printJSON(out, map[string]any{
			"a":        calc.A,
			"b":        calc.B,
			"operator": calc.Operator.Symbol(),
			"name":     calc.Operator.Name(),
			"display":  core.FormatResult(calc.Result),
		})
	}
	fmt.Fprintln(out, calc.Summary())
	return nil
}

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "classify INCOME EXPENSES",
		Short:   "Classify a monthly budget by its net value",
		Example: `  guidectl classify 5000 2500`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			income, err := core.ParseOperand(args[0])
			if err != nil {
				return fmt.Errorf("income: %w", err)
			}
			expenses, err := core.ParseOperand(args[1])
			if err != nil {
				return fmt.Errorf("expenses: %w", err)
			}

			cl := services.NewCalculator(nil, opts.logger(cmd.ErrOrStderr())).
				Classify(cmd.Context(), income, expenses)

			out := cmd.OutOrStdout()
			if opts.json {
				return printJSON(out, map[string]any{
					"income":      cl.Income,
					"expenses":    cl.Expenses,
					"net":         finiteOrNil(cl.Net),
					"net_display": core.FormatNumber(cl.Net),
					"band":        cl.Band,
					"message":     cl.Message,
					"advice":      cl.Advice,
					"severity":    cl.Severity,
				})
			}
			fmt.Fprintf(out, "%s\n%s\n%s\n", cl.Band, cl.Message, cl.Advice)
			return nil
		},
	}
}

func newTopicsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List curriculum topics in menu order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCatalog(cmd, opts, func(ctx context.Context, catalog content.Catalog) error {
				topics, err := catalog.ListTopics(ctx)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), topics)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tSLUG\tTITLE\tSTATUS")
				for _, t := range topics {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.Position, t.Slug, t.Title, t.Status)
				}
				return tw.Flush()
			})
		},
	}
}

func newTopicCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "topic SLUG",
		Short: "Print one topic with its notes and examples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, opts, func(ctx context.Context, catalog content.Catalog) error {
				topic, err := catalog.GetTopic(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), topic)
				}
				printTopic(cmd.OutOrStdout(), topic)
				return nil
			})
		},
	}
}

func withCatalog(cmd *cobra.Command, opts *options, fn func(context.Context, content.Catalog) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	catalog, cleanup, err := cli.OpenCatalog(ctx, opts.logger(cmd.ErrOrStderr()), opts.config())
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, catalog)
}

func printTopic(w io.Writer, t core.Topic) {
	title := strings.TrimSpace(t.Icon + " " + t.Title)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(title))))
	if !t.Published() {
		fmt.Fprintln(w, "This section is under construction.")
	}
	if t.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", t.Summary)
	}
	for _, n := range t.Notes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
	for _, ex := range t.Examples {
		fmt.Fprintf(w, "\n## %s\n\n", ex.Title)
		for _, line := range strings.Split(strings.TrimRight(ex.Code, "\n"), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		if ex.Output != "" {
			fmt.Fprintf(w, "\n  => %s\n", ex.Output)
		}
		for _, r := range ex.Rules {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	for _, c := range t.Charts {
		fmt.Fprintf(w, "\n[chart] %s (%s, %d points)\n", c.Title, c.Kind, len(c.Points))
	}
}

// finiteOrNil maps an overflowed value to JSON null.
func finiteOrNil(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
