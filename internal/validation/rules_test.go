package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/registry/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.Nil(t, WrapValidationError(nil))
	})

	t.Run("WrapsAsInvalidInput", func(t *testing.T) {
		err := WrapValidationError(assert.AnError)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("ops"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("repo-a"))
	assert.Error(t, NoWhitespace.Validate(" repo-a"))
	assert.Error(t, NoWhitespace.Validate("repo-a "))
}

func TestSlug(t *testing.T) {
	valid := []string{"repo-a", "acme", "libs.release", "team_x", "a1"}
	for _, s := range valid {
		assert.NoError(t, Slug.Validate(s), s)
	}

	invalid := []string{"", "Repo-A", "-repo", "repo a", "repo/a", "*"}
	for _, s := range invalid {
		assert.Error(t, Slug.Validate(s), s)
	}
}
