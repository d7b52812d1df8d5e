package schema

import "errors"

var (
	// ErrDuplicateClass is returned when a class name is registered twice
	ErrDuplicateClass = errors.New("class already registered")

	// ErrUnknownClass is returned when a class lookup fails
	ErrUnknownClass = errors.New("unknown class")

	// ErrDuplicateRelation is returned when a relationship name is declared twice on a class
	ErrDuplicateRelation = errors.New("relationship already declared")

	// ErrUnknownRelation is returned when a relationship lookup fails
	ErrUnknownRelation = errors.New("unknown relationship")

	// ErrDuplicateAccessor is returned when an accessor name is bound twice on a class
	ErrDuplicateAccessor = errors.New("accessor already bound")

	// ErrUnknownAccessor is returned when invoking an accessor that was never bound
	ErrUnknownAccessor = errors.New("unknown accessor")

	// ErrNoTraverser is returned when a generated many-to-many accessor is
	// invoked before a traverser has been configured on the registry
	ErrNoTraverser = errors.New("no traverser configured")
)
