// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/registry/internal/errors"
)

var (
	// slugRegex matches lowercase slugs used for tenant and repository keys.
	slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// Slug validates lowercase identifiers used as tenant slugs and repository keys.
// Keys start with an alphanumeric character and may contain dots, dashes, and
// underscores. Case-sensitive: uppercase input is rejected rather than folded.
var Slug = validation.NewStringRuleWithError(
	func(s string) bool {
		return slugRegex.MatchString(s)
	},
	validation.NewError(
		"validation_slug",
		"must be a lowercase identifier (letters, digits, '.', '_', '-')",
	),
)
