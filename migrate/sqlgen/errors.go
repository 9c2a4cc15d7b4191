package sqlgen

import "errors"

// ErrUnsupportedConstraint is returned when a constraint cannot be
// expressed on the target backend, such as dropping an unnamed check
// constraint.
var ErrUnsupportedConstraint = errors.New("unsupported table constraint")
