package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name     string `validate:"required,min=1,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func TestValidate_Valid(t *testing.T) {
	form := registerForm{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret1",
	}

	assert.NoError(t, Validate(form))
}

func TestValidate_MissingFields(t *testing.T) {
	err := Validate(registerForm{})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.FieldErrors()
	require.Len(t, fields, 3)

	byField := make(map[string]string, len(fields))
	for _, f := range fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "is required", byField["name"])
	assert.Equal(t, "is required", byField["email"])
	assert.Equal(t, "is required", byField["password"])
}

func TestValidate_BadEmail(t *testing.T) {
	form := registerForm{
		Name:     "Alice",
		Email:    "not-an-email",
		Password: "secret1",
	}

	err := Validate(form)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.FieldErrors()
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].Field)
	assert.Equal(t, "must be a valid email address", fields[0].Message)
}

func TestValidate_ShortPassword(t *testing.T) {
	form := registerForm{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "abc",
	}

	err := Validate(form)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.FieldErrors()
	require.Len(t, fields, 1)
	assert.Equal(t, "password", fields[0].Field)
	assert.Equal(t, "must be at least 6 characters", fields[0].Message)
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(registerForm{Name: "Alice", Email: "alice@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'password' is required")
}
