package property

import (
	"log/slog"

	"github.com/orehub/minetrack/internal/model"
)

// registry is a plain type-tag to processor map. Populated once at startup
// and read-only afterwards, so concurrent reads need no synchronization.
type registry[P any] struct {
	procs map[model.PropertyType]P
}

func newRegistry[P any]() *registry[P] {
	return &registry[P]{procs: make(map[model.PropertyType]P)}
}

func (r *registry[P]) register(t model.PropertyType, p P) {
	r.procs[t] = p
}

func (r *registry[P]) resolve(t model.PropertyType) (P, bool) {
	p, ok := r.procs[t]
	return p, ok
}

// Registries holds the three processor registries, keyed by the same
// property-type tag space. Build one with NewRegistries and inject it into
// the engine; there is no package-level registry on purpose, so tests can
// swap in fakes.
type Registries struct {
	creators *registry[CreationProcessor]
	updaters *registry[UpdateProcessor]
	filters  *registry[FilterTransformer]
	logger   *slog.Logger
}

// NewRegistries returns registries populated with the default processors
// for every supported property type.
func NewRegistries(logger *slog.Logger) *Registries {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registries{
		creators: newRegistry[CreationProcessor](),
		updaters: newRegistry[UpdateProcessor](),
		filters:  newRegistry[FilterTransformer](),
		logger:   logger,
	}

	text := &textCreator{}
	r.RegisterCreator(model.TypeText, text)
	r.RegisterCreator(model.TypeRichText, text)
	r.RegisterUpdater(model.TypeText, &scalarUpdater{create: text})
	r.RegisterUpdater(model.TypeRichText, &scalarUpdater{create: text})
	r.RegisterFilter(model.TypeText, &textFilter{})
	r.RegisterFilter(model.TypeRichText, &textFilter{})

	sel := &selectCreator{}
	r.RegisterCreator(model.TypeSelect, sel)
	r.RegisterUpdater(model.TypeSelect, &scalarUpdater{create: sel})
	r.RegisterFilter(model.TypeSelect, &membershipFilter{multi: false})

	msel := &multiSelectCreator{}
	r.RegisterCreator(model.TypeMultiSelect, msel)
	r.RegisterUpdater(model.TypeMultiSelect, &listUpdater{create: msel})
	r.RegisterFilter(model.TypeMultiSelect, &membershipFilter{multi: true})

	miners := &minersCreator{}
	r.RegisterCreator(model.TypeMiners, miners)
	r.RegisterUpdater(model.TypeMiners, &listUpdater{create: miners})
	r.RegisterFilter(model.TypeMiners, &membershipFilter{multi: true})

	user := &userCreator{}
	r.RegisterCreator(model.TypeUser, user)
	r.RegisterUpdater(model.TypeUser, &scalarUpdater{create: user})
	r.RegisterFilter(model.TypeUser, &membershipFilter{multi: false})

	// System types: filter/sort only, written by the engine directly.
	r.RegisterFilter(model.TypeNumber, &numberFilter{})
	r.RegisterFilter(model.TypeDatetime, &datetimeFilter{})

	return r
}

// RegisterCreator registers a creation processor for a property type.
func (r *Registries) RegisterCreator(t model.PropertyType, p CreationProcessor) {
	r.creators.register(t, p)
}

// RegisterUpdater registers an update processor for a property type.
func (r *Registries) RegisterUpdater(t model.PropertyType, p UpdateProcessor) {
	r.updaters.register(t, p)
}

// RegisterFilter registers a filter transformer for a property type.
func (r *Registries) RegisterFilter(t model.PropertyType, p FilterTransformer) {
	r.filters.register(t, p)
}

// Creator resolves the creation processor for a property type. Lookup
// failure is fatal for the operation.
func (r *Registries) Creator(t model.PropertyType) (CreationProcessor, error) {
	p, ok := r.creators.resolve(t)
	if !ok {
		return nil, &model.UnsupportedPropertyTypeError{Type: t}
	}
	return p, nil
}

// Updater resolves the update processor for a property type. Lookup
// failure is fatal for the operation.
func (r *Registries) Updater(t model.PropertyType) (UpdateProcessor, error) {
	p, ok := r.updaters.resolve(t)
	if !ok {
		return nil, &model.UnsupportedPropertyTypeError{Type: t}
	}
	return p, nil
}

// Filter resolves the filter transformer for a property type. Unknown types
// fall back to raw string equality instead of failing, so one odd filter
// degrades a list query rather than blocking it.
func (r *Registries) Filter(t model.PropertyType) FilterTransformer {
	p, ok := r.filters.resolve(t)
	if !ok {
		r.logger.Warn("no filter transformer for property type, falling back to string equality",
			"property_type", t.String())
		return &defaultFilter{}
	}
	return p
}

// ProcessCreate runs the full creation contract for one raw value:
// format validation, business-rule validation, then row transformation.
func (r *Registries) ProcessCreate(def *model.PropertyDefinition, issueID string, raw any) (model.RowSet, error) {
	p, err := r.Creator(def.Type)
	if err != nil {
		return model.RowSet{}, err
	}
	if err := p.ValidateFormat(def, raw); err != nil {
		return model.RowSet{}, err
	}
	if err := p.ValidateRules(def, raw); err != nil {
		return model.RowSet{}, err
	}
	return p.ToRows(def, issueID, raw)
}

// ProcessUpdate runs the full update contract for one operation.
func (r *Registries) ProcessUpdate(def *model.PropertyDefinition, issueID string, op model.Operation) (model.ValueDiff, error) {
	p, err := r.Updater(def.Type)
	if err != nil {
		return model.ValueDiff{}, err
	}
	if err := p.ValidateFormat(def, op); err != nil {
		return model.ValueDiff{}, err
	}
	if err := p.ValidateRules(def, op); err != nil {
		return model.ValueDiff{}, err
	}
	return p.ToDiff(def, issueID, op)
}

// TransformFilter runs the full filter contract for one condition.
func (r *Registries) TransformFilter(cond model.FilterCondition) (model.ValuePredicate, error) {
	t := r.Filter(cond.PropertyType)
	cond = t.Preprocess(cond)
	if err := t.Validate(cond); err != nil {
		return model.ValuePredicate{}, err
	}
	return t.Transform(cond)
}
