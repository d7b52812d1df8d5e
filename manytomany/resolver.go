// Package manytomany augments a schema registry's many-to-many declarations
// so that join metadata can be introspected after all classes have loaded.
//
// Declaration is intercepted by Resolver.Declare, which records the
// declaration-time facts and forwards to the base declaration unchanged.
// Resolver.Describe then augments relationship lookups: the first time the
// intermediate relation of a registered many-to-many is described, the two
// sides of the join are inferred from the relationships declared on the join
// class and cached on the descriptor itself.
package manytomany

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/seamorm/seam/schema"
)

// MetaKey is the reserved descriptor key under which resolved join metadata
// is cached.
const MetaKey = "many_to_many"

// Registration records the declaration-time facts of one many-to-many
// relation. Immutable once stored.
type Registration struct {
	MethodName string
	Relation   string
	Accessor   string
	Attrs      map[string]any
}

// Resolved is the derived view of a many-to-many join, attached to the
// intermediate relation's descriptor under MetaKey. Fields may be left unset
// when the join class's relationships could not be classified; callers must
// treat unset fields as unresolved, not as an error.
type Resolved struct {
	MapClass     *schema.Class
	MapFrom      string
	MapTo        string
	ForeignClass *schema.Class
	Relation     string
	Accessor     string
	MethodName   string
	Attrs        map[string]any
}

// Complete reports whether both sides of the join were classified.
func (r *Resolved) Complete() bool {
	return r != nil && r.MapFrom != "" && r.ForeignClass != nil && r.MapTo != ""
}

// Resolver keeps the per-class registry of many-to-many declarations and
// augments relationship descriptors with resolved join metadata.
type Resolver struct {
	mu      sync.RWMutex
	classes map[*schema.Class]map[string]Registration
	log     *zap.Logger
}

// NewResolver creates a resolver. A nil logger disables logging.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		classes: make(map[*schema.Class]map[string]Registration),
		log:     log,
	}
}

// Declare registers a many-to-many relation on class and forwards to the base
// declaration. method is the accessor to generate, relation the intermediate
// one-to-many relation to traverse, accessor the join-table column naming the
// far side. Registering the same relation name twice on a class fails with
// ErrDuplicateRelation.
func (r *Resolver) Declare(class *schema.Class, method, relation, accessor string, attrs map[string]any) error {
	if class == nil {
		return fmt.Errorf("class: %w", ErrMissingArgument)
	}
	if method == "" {
		return fmt.Errorf("method name: %w", ErrMissingArgument)
	}
	if relation == "" {
		return fmt.Errorf("relation name: %w", ErrMissingArgument)
	}
	if accessor == "" {
		return fmt.Errorf("foreign accessor name: %w", ErrMissingArgument)
	}

	r.mu.Lock()
	regs, ok := r.classes[class]
	if !ok {
		regs = make(map[string]Registration)
		r.classes[class] = regs
	}
	if _, exists := regs[relation]; exists {
		r.mu.Unlock()
		return fmt.Errorf("class %s, relation %s: %w", class.Name, relation, ErrDuplicateRelation)
	}
	regs[relation] = Registration{
		MethodName: method,
		Relation:   relation,
		Accessor:   accessor,
		Attrs:      attrs,
	}
	r.mu.Unlock()

	// Forward to the base declaration so accessor generation is unaffected.
	if err := class.ManyToMany(method, relation, accessor, attrs); err != nil {
		// Roll back the registration so a failed declaration can be retried.
		r.mu.Lock()
		delete(r.classes[class], relation)
		r.mu.Unlock()
		return err
	}

	r.log.Debug("registered many-to-many relation",
		zap.String("class", class.Name),
		zap.String("method", method),
		zap.String("relation", relation),
		zap.String("accessor", accessor))

	return nil
}

// Registration returns the registration for relation visible on class,
// searching the class and then its ancestors.
func (r *Resolver) Registration(class *schema.Class, relation string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for cur := class; cur != nil; cur = cur.Parent() {
		if regs, ok := r.classes[cur]; ok {
			if reg, ok := regs[relation]; ok {
				return reg, true
			}
		}
	}
	return Registration{}, false
}

// Registrations returns all many-to-many registrations visible on class,
// its own merged with its ancestors', local registrations taking precedence.
func (r *Resolver) Registrations(class *schema.Class) map[string]Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	merged := make(map[string]Registration)
	for cur := class; cur != nil; cur = cur.Parent() {
		for name, reg := range r.classes[cur] {
			if _, seen := merged[name]; !seen {
				merged[name] = reg
			}
		}
	}
	return merged
}

// Describe looks up the descriptor for relation on class. Unknown relation
// names fail with the registry's own error, unwrapped. Descriptors for
// relations never registered through Declare are returned unchanged. For
// registered relations the resolved join metadata is attached under MetaKey
// on first request and reused afterwards.
func (r *Resolver) Describe(class *schema.Class, relation string) (*schema.Relationship, error) {
	rel, err := class.Relationship(relation)
	if err != nil {
		return nil, err
	}

	reg, ok := r.Registration(class, relation)
	if !ok {
		return rel, nil
	}
	if _, done := rel.Meta(MetaKey); done {
		return rel, nil
	}

	rel.SetMeta(MetaKey, r.resolve(class, rel, reg))
	return rel, nil
}

// resolve infers the two sides of the join from the relationships declared
// on the intermediate class. Each relationship there either points back at
// the declaring class (giving the local join column, read from the key side
// of its first condition pair) or at the other side of the join (giving the
// foreign class and its join column, read from the value side). Condition
// pairs beyond the first are ignored; composite join keys on the linking
// table are not supported here.
func (r *Resolver) resolve(class *schema.Class, rel *schema.Relationship, reg Registration) *Resolved {
	res := &Resolved{
		MapClass:   rel.Target,
		Relation:   reg.Relation,
		Accessor:   reg.Accessor,
		MethodName: reg.MethodName,
		Attrs:      reg.Attrs,
	}

	if rel.Target == nil {
		r.log.Debug("many-to-many relation has no join class",
			zap.String("class", class.Name),
			zap.String("relation", reg.Relation))
		return res
	}

	for _, jrel := range rel.Target.Relationships() {
		key, value, ok := jrel.Condition.First()
		if !ok {
			continue
		}
		if jrel.Target == nil {
			continue
		}
		if class.Isa(jrel.Target) {
			res.MapFrom = schema.StripPrefix(key)
		} else {
			res.ForeignClass = jrel.Target
			res.MapTo = schema.StripPrefix(value)
		}
	}

	if !res.Complete() {
		r.log.Debug("many-to-many resolution incomplete",
			zap.String("class", class.Name),
			zap.String("relation", reg.Relation),
			zap.String("map_from", res.MapFrom),
			zap.String("map_to", res.MapTo))
	}

	return res
}
