package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/orehub/minetrack/internal/model"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// formatValue renders one property value for table output.
func formatValue(pv model.PropertyValue) string {
	if len(pv.Values) > 0 {
		return strings.Join(pv.Values, ", ")
	}
	if pv.Value != nil {
		return *pv.Value
	}
	return "-"
}

func printIssueTable(iss *model.Issue) {
	fmt.Printf("ID:        %s\n", iss.ID)
	fmt.Printf("Seq:       %d\n", iss.Seq)
	fmt.Printf("Workspace: %s\n", iss.WorkspaceID)
	fmt.Printf("Created:   %s\n", iss.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:   %s\n", iss.UpdatedAt.Format("2006-01-02 15:04:05"))

	if len(iss.Properties) == 0 {
		return
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROPERTY\tTYPE\tVALUE")
	for _, pv := range iss.Properties {
		fmt.Fprintf(w, "%s\t%s\t%s\n", pv.PropertyID, pv.Type, formatValue(pv))
	}
	w.Flush()
}

// summarize renders an issue's non-system properties as one compact cell.
func summarize(iss *model.Issue, maxLen int) string {
	var parts []string
	for _, pv := range iss.Properties {
		switch pv.PropertyID {
		case model.SystemPropertyID, model.SystemPropertyCreatedAt, model.SystemPropertyUpdatedAt:
			continue
		}
		parts = append(parts, pv.PropertyID+"="+formatValue(pv))
	}
	s := strings.Join(parts, " ")
	if len(s) > maxLen {
		s = s[:maxLen-3] + "..."
	}
	return s
}

func printIssueListTable(issues []*model.Issue, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEQ\tCREATED\tPROPERTIES")
	for _, iss := range issues {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			iss.ID,
			iss.Seq,
			iss.CreatedAt.Format("2006-01-02"),
			summarize(iss, 60),
		)
	}
	w.Flush()
	fmt.Printf("\n%d issues (%d total)\n", len(issues), total)
}

func printDefinitionListTable(defs []*model.PropertyDefinition) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tREADONLY\tNULLABLE")
	for _, def := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\n", def.ID, def.Name, def.Type, def.Readonly, def.Nullable)
	}
	w.Flush()
}

func fatalMessages(msgs []string) {
	for _, msg := range msgs {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
