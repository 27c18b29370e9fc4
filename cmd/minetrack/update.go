package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orehub/minetrack/internal/model"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update an issue's properties",
	GroupID: "issues",
	Long: `Update an issue by applying property operations in order:
sets first, then adds, then replaces, then clears.

  --set     replace a scalar value          (key=value)
  --add     append one element to a list    (key=value)
  --replace swap a whole list               (key=v1,v2,...)
  --clear   remove a value entirely         (key)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, _ := cmd.Flags().GetStringArray("set")
		adds, _ := cmd.Flags().GetStringArray("add")
		replaces, _ := cmd.Flags().GetStringArray("replace")
		clears, _ := cmd.Flags().GetStringArray("clear")

		var ops []model.Operation
		for _, p := range sets {
			k, v, ok := strings.Cut(p, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q: expected key=value", p)
			}
			ops = append(ops, model.Operation{PropertyID: k, Kind: model.OpSet, Value: v})
		}
		for _, p := range adds {
			k, v, ok := strings.Cut(p, "=")
			if !ok {
				return fmt.Errorf("invalid --add %q: expected key=value", p)
			}
			ops = append(ops, model.Operation{PropertyID: k, Kind: model.OpAdd, Value: v})
		}
		for _, p := range replaces {
			k, v, ok := strings.Cut(p, "=")
			if !ok {
				return fmt.Errorf("invalid --replace %q: expected key=v1,v2", p)
			}
			values := splitList(v)
			anyValues := make([]any, len(values))
			for i, s := range values {
				anyValues[i] = s
			}
			ops = append(ops, model.Operation{PropertyID: k, Kind: model.OpUpdate, Values: anyValues})
		}
		for _, k := range clears {
			ops = append(ops, model.Operation{PropertyID: k, Kind: model.OpRemove})
		}
		if len(ops) == 0 {
			return fmt.Errorf("no operations given: use --set, --add, --replace, or --clear")
		}

		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := eng.UpdateIssue(context.Background(), workspace, args[0], ops)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !res.Success {
			fatalMessages(res.Errors)
		}

		if jsonOut {
			printJSON(res.Issue)
		} else {
			printIssueTable(res.Issue)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().StringArray("set", nil, "set a scalar property (key=value, repeatable)")
	updateCmd.Flags().StringArray("add", nil, "append to a list property (key=value, repeatable)")
	updateCmd.Flags().StringArray("replace", nil, "replace a list property (key=v1,v2, repeatable)")
	updateCmd.Flags().StringArray("clear", nil, "clear a property (key, repeatable)")
}
