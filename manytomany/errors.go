package manytomany

import "errors"

var (
	// ErrDuplicateRelation is returned when the same intermediate relation
	// name is registered twice on a class
	ErrDuplicateRelation = errors.New("many-to-many relation already registered")

	// ErrMissingArgument is returned when a required identifier is empty
	ErrMissingArgument = errors.New("missing required argument")
)

// IsDuplicateRelation returns true if the error is ErrDuplicateRelation
func IsDuplicateRelation(err error) bool {
	return errors.Is(err, ErrDuplicateRelation)
}

// IsMissingArgument returns true if the error is ErrMissingArgument
func IsMissingArgument(err error) bool {
	return errors.Is(err, ErrMissingArgument)
}
