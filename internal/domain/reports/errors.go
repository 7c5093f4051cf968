package reports

import "errors"

var (
	ErrInvalidRelationship = errors.New("relationship must be a non-self evaluator relationship")
	ErrMissingFilter       = errors.New("user and attribute bank are required")
	ErrMissingBank         = errors.New("attribute bank is required")
	ErrConflictingCategory = errors.New("attribute placed in both task and people categories")
)
