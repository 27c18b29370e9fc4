package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version       string    `json:"version"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	IssueCount    int       `json:"issue_count"`
	PropertyCount int       `json:"property_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes one workspace's property definitions and issues as
// JSONL to w. Issues carry their assembled property values, including the
// system timestamp and sequence rows, and come out in creation order.
func ExportJSONL(ctx context.Context, s store.Store, workspaceID string, w io.Writer) error {
	ids, err := s.ListIssueIDs(ctx, store.ListIssuesQuery{
		WorkspaceID: workspaceID,
		Sort:        []model.SortKey{{PropertyID: model.SystemPropertyID, Numeric: true}},
	})
	if err != nil {
		return fmt.Errorf("list issues: %w", err)
	}

	issues, err := s.GetIssues(ctx, workspaceID, ids)
	if err != nil {
		return fmt.Errorf("get issues: %w", err)
	}

	singles, err := s.GetSingleValues(ctx, ids)
	if err != nil {
		return fmt.Errorf("get single values: %w", err)
	}
	multis, err := s.GetMultiValues(ctx, ids)
	if err != nil {
		return fmt.Errorf("get multi values: %w", err)
	}
	values := model.AssemblePropertyValues(singles, multis)
	for _, iss := range issues {
		iss.Properties = values[iss.ID]
	}

	defs, err := s.ListPropertyDefinitions(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("list property definitions: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:       "1",
		Type:          "header",
		Timestamp:     time.Now().UTC(),
		IssueCount:    len(issues),
		PropertyCount: len(defs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, def := range defs {
		if err := enc.Encode(record{Type: "property", Data: def}); err != nil {
			return fmt.Errorf("encode property %s: %w", def.ID, err)
		}
	}

	for _, iss := range issues {
		if err := enc.Encode(record{Type: "issue", Data: iss}); err != nil {
			return fmt.Errorf("encode issue %s: %w", iss.ID, err)
		}
	}

	return nil
}
