// Package engine orchestrates the issue store: batch creation, ordered
// property updates, filtered listing, and the property definition
// lifecycle. It composes the type-polymorphic processor registries, the
// sequence allocator, and the persistence layer, and emits domain events
// after successful mutations.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/orehub/minetrack/internal/events"
	"github.com/orehub/minetrack/internal/idgen"
	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/property"
	"github.com/orehub/minetrack/internal/sequence"
	"github.com/orehub/minetrack/internal/store"
)

// Engine is the orchestration core. All mutating methods are safe for
// concurrent use; correctness under concurrent writers comes from the
// store's transactions and the allocator's optimistic counter updates.
type Engine struct {
	store  store.Store
	props  *property.Registries
	seq    *sequence.Allocator
	pub    events.Publisher
	logger *slog.Logger

	// now and newID are swappable for deterministic tests.
	now   func() time.Time
	newID func() (string, error)
}

// New builds an engine. A nil publisher disables event emission; a nil
// logger falls back to slog.Default().
func New(s store.Store, regs *property.Registries, alloc *sequence.Allocator, pub events.Publisher, logger *slog.Logger) *Engine {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  s,
		props:  regs,
		seq:    alloc,
		pub:    pub,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  idgen.Generate,
	}
}

// resolveDefinition looks up a property definition, checking the builtin
// system properties before the store.
func (e *Engine) resolveDefinition(ctx context.Context, workspaceID, propertyID string) (*model.PropertyDefinition, error) {
	for _, def := range model.SystemProperties() {
		if def.ID == propertyID {
			return def, nil
		}
	}
	def, err := e.store.GetPropertyDefinition(ctx, workspaceID, propertyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Kind: "property", ID: propertyID}
	}
	if err != nil {
		return nil, &model.StorageError{Op: "get property definition", Err: err}
	}
	return def, nil
}

// publish emits an event best-effort. Event delivery never fails the
// operation that triggered it.
func (e *Engine) publish(ctx context.Context, topic string, event any) {
	if err := e.pub.Publish(ctx, topic, event); err != nil {
		e.logger.Warn("publishing event failed", "topic", topic, "error", err)
	}
}

// systemRows builds the engine-written EAV rows for a new issue: the ID
// sequence number (with its numeric projection for ordering) and both
// timestamps as RFC 3339 strings.
func systemRows(iss *model.Issue) []model.SingleValue {
	seq := float64(iss.Seq)
	id := strconv.FormatInt(iss.Seq, 10)
	created := iss.CreatedAt.Format(time.RFC3339)
	updated := iss.UpdatedAt.Format(time.RFC3339)
	return []model.SingleValue{
		{IssueID: iss.ID, PropertyID: model.SystemPropertyID, PropertyType: model.TypeNumber, Value: &id, NumberValue: &seq},
		{IssueID: iss.ID, PropertyID: model.SystemPropertyCreatedAt, PropertyType: model.TypeDatetime, Value: &created},
		{IssueID: iss.ID, PropertyID: model.SystemPropertyUpdatedAt, PropertyType: model.TypeDatetime, Value: &updated},
	}
}
