package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// MinPerformanceDays is the shortest range, in days, accepted for a
// performance query.
const MinPerformanceDays = 5

// MaxNameLength bounds portfolio and strategy names.
const MaxNameLength = 100

// ValidateDateRange checks that end is at least MinPerformanceDays after start.
func ValidateDateRange(start, end time.Time) error {
	if model.DaysBetween(start, end) < MinPerformanceDays {
		return fmt.Errorf("%w: end date must be at least %d days after start date", apperrors.ErrInvalidDateRange, MinPerformanceDays)
	}
	return nil
}

// validateName records a problem with a required name under field.
func validateName(errors map[string]string, field, name string) {
	if strings.TrimSpace(name) == "" {
		errors[field] = field + " is required"
	} else if len(name) > MaxNameLength {
		errors[field] = fmt.Sprintf("%s must be %d characters or less", field, MaxNameLength)
	}
}

// validateDate records a problem with a required YYYY-MM-DD date under field.
func validateDate(errors map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errors[field] = field + " is required"
		return
	}
	if _, err := model.ParseDate(value); err != nil {
		errors[field] = err.Error()
	}
}
