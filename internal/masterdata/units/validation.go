package units

import (
	"fmt"
	"strings"

	"github.com/merobill/merobill/internal/shared"
)

func (s *Service) validate(u Unit) error {
	if err := validateName(u.Name); err != nil {
		return err
	}
	if u.MainUnitID != nil && u.Factor.Sign() <= 0 {
		return fmt.Errorf("conversion factor must be positive: %w", shared.ErrValidation)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required: %w", shared.ErrValidation)
	}
	return nil
}
