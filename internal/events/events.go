package events

import (
	"context"

	"github.com/orehub/minetrack/internal/model"
)

// Event topic constants
const (
	TopicIssueCreated = "minetrack.issue.created"
	TopicIssueUpdated = "minetrack.issue.updated"
	TopicIssueDeleted = "minetrack.issue.deleted"

	TopicPropertyCreated = "minetrack.property.created"
	TopicPropertyDeleted = "minetrack.property.deleted"
)

// Event types

type IssueCreated struct {
	Issue *model.Issue `json:"issue"`
}

type IssueUpdated struct {
	Issue      *model.Issue `json:"issue"`
	Properties []string     `json:"properties"` // ids of the properties the update touched
}

type IssueDeleted struct {
	WorkspaceID string `json:"workspace_id"`
	IssueID     string `json:"issue_id"`
}

type PropertyCreated struct {
	Definition *model.PropertyDefinition `json:"definition"`
}

type PropertyDeleted struct {
	WorkspaceID string `json:"workspace_id"`
	PropertyID  string `json:"property_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
