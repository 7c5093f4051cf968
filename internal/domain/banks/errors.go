package banks

import "errors"

var (
	ErrBankNotFound      = errors.New("attribute bank not found")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrDuplicateName     = errors.New("name already exists")
	ErrInvalidIdealScore = errors.New("ideal score must be between 0 and 100")
	ErrInvalidWeight     = errors.New("option weight must be between 0 and 100")
	ErrNoOptions         = errors.New("statement requires at least one option")
	ErrEmptyName         = errors.New("name is required")
)
