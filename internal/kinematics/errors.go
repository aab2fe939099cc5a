package kinematics

import "errors"

var (
	// ErrInvalidConfig is returned by constructors when a parameter is
	// outside its valid range. Callers must not proceed with a nil instance.
	ErrInvalidConfig = errors.New("kinematics: invalid configuration")

	// ErrInvalidInput is returned when method arguments violate the
	// documented contract, e.g. mismatched slice lengths. It indicates a
	// caller bug rather than a runtime condition to recover from.
	ErrInvalidInput = errors.New("kinematics: invalid input")
)
