package graph

import (
	"fmt"

	"github.com/hargabyte/stepgraph/internal/step"
)

// DuplicateEntityError reports two instances declared with the same id.
type DuplicateEntityError struct {
	ID     int
	First  step.Position
	Second step.Position
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("line %d, column %d: duplicate entity #%d (first declared on line %d)",
		e.Second.Line, e.Second.Column, e.ID, e.First.Line)
}

// Report returns the error in the same shape as a parse error report.
func (e *DuplicateEntityError) Report() step.ErrorReport {
	return step.ErrorReport{
		Type:    "duplicate_entity",
		Line:    e.Second.Line,
		Column:  e.Second.Column,
		Name:    fmt.Sprintf("#%d", e.ID),
		Message: e.Error(),
	}
}

// EntityNotFoundError reports a requested id that is not in the graph.
type EntityNotFoundError struct {
	ID int
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity #%d not found", e.ID)
}
