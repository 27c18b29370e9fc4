package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orehub/minetrack/internal/engine"
	"github.com/orehub/minetrack/internal/model"
)

// parseFilter parses one --filter expression. The form is
// "property=value" for equality or "property:operator=value" for the
// other operators; in-lists are comma-separated.
func parseFilter(expr string) (engine.FilterInput, error) {
	lhs, value, ok := strings.Cut(expr, "=")
	if !ok {
		return engine.FilterInput{}, fmt.Errorf("invalid filter %q: expected property[:operator]=value", expr)
	}

	propertyID := lhs
	op := model.OpEq
	if prop, opName, hasOp := strings.Cut(lhs, ":"); hasOp {
		propertyID = prop
		op = model.Operator(opName)
		if !op.IsValid() {
			return engine.FilterInput{}, fmt.Errorf("unknown operator %q in filter %q", opName, expr)
		}
	}

	var v any = value
	if op == model.OpIn {
		v = splitList(value)
	}
	return engine.FilterInput{PropertyID: propertyID, Operator: op, Value: v}, nil
}

// parseSort parses one --sort expression: "property" ascending or
// "-property" descending.
func parseSort(expr string) engine.SortInput {
	if rest, ok := strings.CutPrefix(expr, "-"); ok {
		return engine.SortInput{PropertyID: rest, Descending: true}
	}
	return engine.SortInput{PropertyID: expr}
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List issues",
	GroupID: "issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		filterExprs, _ := cmd.Flags().GetStringArray("filter")
		sortExprs, _ := cmd.Flags().GetStringArray("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		req := engine.ListIssuesRequest{Limit: limit, Offset: offset}
		for _, expr := range filterExprs {
			f, err := parseFilter(expr)
			if err != nil {
				return err
			}
			req.Filters = append(req.Filters, f)
		}
		for _, expr := range sortExprs {
			req.Sort = append(req.Sort, parseSort(expr))
		}

		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()
		req.WorkspaceID = workspace

		res, err := eng.ListIssues(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOut {
			printJSON(res)
		} else {
			printIssueListTable(res.Issues, res.Total)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringArrayP("filter", "f", nil, "filter expression (property[:operator]=value, repeatable)")
	listCmd.Flags().StringArrayP("sort", "s", nil, "sort property (prefix with - for descending, repeatable)")
	listCmd.Flags().Int("limit", 20, "maximum number of issues to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")
}
