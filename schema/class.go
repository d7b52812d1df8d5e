// Package schema provides a registry of class metadata for a runtime ORM:
// classes with tables, columns and composite primary keys, per-class
// relationship declarations, and named accessor dispatch.
package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-openapi/inflect"
)

// Record is a single row of class data, keyed by column name.
type Record map[string]any

// Accessor is a named capability bound to a class. Relationship accessors
// generated at declaration time are dispatched by name through this type
// rather than by reflection.
type Accessor func(ctx context.Context, record Record) (any, error)

// Class holds the schema metadata for one entity type. Subclasses created
// through Registry.Derive see their ancestors' relationships and accessors
// merged with their own, with their own taking precedence.
type Class struct {
	Name    string
	Table   string
	Columns []string
	Primary []string

	parent   *Class
	registry *Registry

	mu        sync.RWMutex
	relations map[string]*Relationship
	accessors map[string]Accessor
}

// NewClass creates a class with a default snake_case table name.
func NewClass(name string) *Class {
	return &Class{
		Name:      name,
		Table:     inflect.Underscore(name),
		relations: make(map[string]*Relationship),
		accessors: make(map[string]Accessor),
	}
}

// Parent returns the class this one derives from, or nil.
func (c *Class) Parent() *Class {
	return c.parent
}

// Isa reports whether c is other or derives from it. This is the hierarchy
// compatibility check used where pointer equality would reject dynamically
// derived subclasses.
func (c *Class) Isa(other *Class) bool {
	if other == nil {
		return false
	}
	for cur := c; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// HasColumn reports whether the class declares the named column.
func (c *Class) HasColumn(name string) bool {
	for _, col := range c.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// PrimaryKey returns the primary key columns, defaulting to ["id"] when none
// were declared.
func (c *Class) PrimaryKey() []string {
	if len(c.Primary) == 0 {
		return []string{"id"}
	}
	return c.Primary
}

// Declare registers a relationship on this class. Redeclaring a name already
// present on the class fails; shadowing a name declared on an ancestor is
// allowed and the local declaration wins.
func (c *Class) Declare(rel *Relationship) error {
	if rel == nil || rel.Name == "" {
		return fmt.Errorf("class %s: relationship name must not be empty", c.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.relations[rel.Name]; exists {
		return fmt.Errorf("class %s, relationship %s: %w", c.Name, rel.Name, ErrDuplicateRelation)
	}
	if rel.DeclaredOn == nil {
		rel.DeclaredOn = c
	}
	c.relations[rel.Name] = rel
	return nil
}

// HasMany declares a one-to-many relationship to target joined on cond.
func (c *Class) HasMany(name string, target *Class, cond *Condition) (*Relationship, error) {
	rel := &Relationship{
		Name:       name,
		Kind:       KindHasMany,
		DeclaredOn: c,
		Target:     target,
		Condition:  cond,
	}
	if err := c.Declare(rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// BelongsTo declares a many-to-one relationship to target joined on cond.
func (c *Class) BelongsTo(name string, target *Class, cond *Condition) (*Relationship, error) {
	rel := &Relationship{
		Name:       name,
		Kind:       KindBelongsTo,
		DeclaredOn: c,
		Target:     target,
		Condition:  cond,
	}
	if err := c.Declare(rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// Relationship returns the descriptor for the named relationship, searching
// this class and then its ancestors.
func (c *Class) Relationship(name string) (*Relationship, error) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		rel, ok := cur.relations[name]
		cur.mu.RUnlock()
		if ok {
			return rel, nil
		}
	}
	return nil, fmt.Errorf("class %s, relationship %s: %w", c.Name, name, ErrUnknownRelation)
}

// Relationships returns all relationships visible on this class: its own
// merged with its ancestors', local declarations taking precedence.
func (c *Class) Relationships() map[string]*Relationship {
	merged := make(map[string]*Relationship)
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for name, rel := range cur.relations {
			if _, seen := merged[name]; !seen {
				merged[name] = rel
			}
		}
		cur.mu.RUnlock()
	}
	return merged
}

// BindAccessor binds a named capability on the class.
func (c *Class) BindAccessor(name string, fn Accessor) error {
	if name == "" || fn == nil {
		return fmt.Errorf("class %s: accessor name and function must not be empty", c.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.accessors[name]; exists {
		return fmt.Errorf("class %s, accessor %s: %w", c.Name, name, ErrDuplicateAccessor)
	}
	c.accessors[name] = fn
	return nil
}

// Accessor returns the named capability, searching this class and then its
// ancestors.
func (c *Class) Accessor(name string) (Accessor, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		fn, ok := cur.accessors[name]
		cur.mu.RUnlock()
		if ok {
			return fn, true
		}
	}
	return nil, false
}

// Invoke dispatches a named capability against a record.
func (c *Class) Invoke(ctx context.Context, name string, record Record) (any, error) {
	fn, ok := c.Accessor(name)
	if !ok {
		return nil, fmt.Errorf("class %s, accessor %s: %w", c.Name, name, ErrUnknownAccessor)
	}
	return fn(ctx, record)
}

// ManyToMany is the base many-to-many declaration. It binds an accessor named
// method that traverses the intermediate relation and reads foreignColumn on
// the join rows. Traversal is delegated to the registry's configured
// Traverser at call time, so declaration order between schema classes does
// not matter.
func (c *Class) ManyToMany(method, relation, foreignColumn string, attrs map[string]any) error {
	if method == "" || relation == "" || foreignColumn == "" {
		return fmt.Errorf("class %s: many-to-many declaration requires method, relation and column names", c.Name)
	}

	return c.BindAccessor(method, func(ctx context.Context, record Record) (any, error) {
		reg := c.registry
		if reg == nil || reg.Traverser() == nil {
			return nil, fmt.Errorf("class %s, accessor %s: %w", c.Name, method, ErrNoTraverser)
		}
		return reg.Traverser().TraverseManyToMany(ctx, c, relation, foreignColumn, record)
	})
}
