package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orehub/minetrack/internal/engine"
)

// parseProperties converts -p key=value pairs into the raw property map.
// Values for list-typed properties split on commas; isMulti reports
// whether a property id names a list type.
func parseProperties(pairs []string, isMulti func(string) bool) (map[string]any, error) {
	props := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid property %q: expected key=value", p)
		}
		if isMulti(k) {
			props[k] = splitList(v)
		} else {
			props[k] = v
		}
	}
	return props, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var createCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create a new issue",
	GroupID: "issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("property")

		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := context.Background()
		props, err := parseProperties(pairs, multiChecker(ctx, eng))
		if err != nil {
			return err
		}

		results, err := eng.CreateIssues(ctx, workspace, []engine.CreateIssueInput{{Properties: props}})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !results[0].Success {
			fatalMessages(results[0].Errors)
		}

		if jsonOut {
			printJSON(results[0].Issue)
		} else {
			printIssueTable(results[0].Issue)
		}
		return nil
	},
}

// multiChecker resolves whether a property stores list values, so comma
// syntax only splits where it means something.
func multiChecker(ctx context.Context, eng *engine.Engine) func(string) bool {
	return func(propertyID string) bool {
		def, err := eng.GetPropertyDefinition(ctx, workspace, propertyID)
		if err != nil {
			return false
		}
		return def.Type.IsMulti()
	}
}

func init() {
	createCmd.Flags().StringArrayP("property", "p", nil, "property value (key=value, repeatable; list values comma-separated)")
}
