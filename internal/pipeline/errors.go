package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySelection halts the recomputation; the user picks columns and retries.
	ErrEmptySelection = errors.New("no columns selected: choose at least one column to display")
	// ErrNoEligibleColumns is informational: the table has nothing to group by.
	ErrNoEligibleColumns = errors.New("no categorical or low-cardinality columns available for grouping")

	ErrAggregateRequired   = errors.New("grouping needs an aggregate column")
	ErrAggregateNotNumeric = errors.New("aggregate column must be numeric")
	ErrNotGroupable        = errors.New("column cannot be used for grouping")
	ErrTooManyGroupColumns = errors.New("too many group columns")
	ErrNoGroupColumns      = errors.New("no group columns left after removing the aggregate column")
)

// UnknownColumnError names requested columns the table does not have.
type UnknownColumnError struct {
	Columns []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column(s): %s", strings.Join(e.Columns, ", "))
}
