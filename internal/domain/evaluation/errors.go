package evaluation

import "errors"

var (
	ErrEvaluationNotFound  = errors.New("evaluation not found")
	ErrEvaluationCompleted = errors.New("evaluation already completed")
	ErrIncompleteResponses = errors.New("all statements must be answered before submitting")
	ErrInvalidAnswer       = errors.New("answer does not match a statement option of the bank")
	ErrInvalidRelationship = errors.New("invalid relationship type")
	ErrUnknownUser         = errors.New("user not found in company")
	ErrBankNotFound        = errors.New("attribute bank not found")
	ErrDuplicateAssignment = errors.New("user already assigned to this bank")
	ErrForbidden           = errors.New("forbidden")
)
