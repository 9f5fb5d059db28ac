package query

import (
	"errors"
	"fmt"
)

// ErrInvalidExpression is returned when a node constructor is called with
// arguments that violate the node's structural invariants. It is always
// reported at construction time; rendering, comparison and visiting cannot
// fail on a well-formed tree.
var ErrInvalidExpression = errors.New("invalid expression")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidExpression, fmt.Sprintf(format, args...))
}
