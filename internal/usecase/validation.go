package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var nonDigits = regexp.MustCompile(`\D`)

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.CategoryID) == "" {
		errors = append(errors, ValidationError{"category_id", "is required"})
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		errors = append(errors, ValidationError{"title", "is required"})
	} else if len(title) < 5 {
		errors = append(errors, ValidationError{"title", "must have at least 5 characters"})
	} else if len(title) > 200 {
		errors = append(errors, ValidationError{"title", "must not exceed 200 characters"})
	}

	if len(input.Description) > 5000 {
		errors = append(errors, ValidationError{"description", "must not exceed 5000 characters"})
	}

	if input.BudgetMin < 0 {
		errors = append(errors, ValidationError{"budget_min", "must not be negative"})
	}
	if input.BudgetMax < 0 {
		errors = append(errors, ValidationError{"budget_max", "must not be negative"})
	}
	if input.BudgetMax > 0 && input.BudgetMin > input.BudgetMax {
		errors = append(errors, ValidationError{"budget_min", "must not exceed budget_max"})
	}

	if len(input.Location) > 120 {
		errors = append(errors, ValidationError{"location", "must not exceed 120 characters"})
	}

	if strings.TrimSpace(input.MobileNumber) == "" {
		errors = append(errors, ValidationError{"mobile_number", "is required"})
	} else if !isValidMobileNumber(input.MobileNumber) {
		errors = append(errors, ValidationError{"mobile_number", "must be a valid 10 digit mobile number"})
	}

	return errors
}

// isValidMobileNumber accepts 10 digits with an optional 91 / 0 prefix.
func isValidMobileNumber(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "91"):
		cleaned = cleaned[2:]
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "0"):
		cleaned = cleaned[1:]
	}
	return len(cleaned) == 10 && cleaned[0] >= '6'
}

func joinValidationErrors(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
