package banks

import (
	"strings"

	"threesixty/internal/domain/scoring"
)

func validateBank(input CreateBankInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrEmptyName
	}
	if input.IdealScore != nil && (*input.IdealScore < 0 || *input.IdealScore > 100) {
		return ErrInvalidIdealScore
	}
	return nil
}

func validateStatement(input AddStatementInput) error {
	if strings.TrimSpace(input.Text) == "" {
		return ErrEmptyName
	}
	if len(input.Options) == 0 {
		return ErrNoOptions
	}
	for _, opt := range input.Options {
		if opt.Weight < scoring.MinWeight || opt.Weight > scoring.MaxWeight {
			return ErrInvalidWeight
		}
	}
	return nil
}
